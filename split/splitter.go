package split

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/tracesplit/tracesplit/split/labels"
)

// Split is one repetition's disjoint partition of table row indices.
// Splits are immutable once emitted.
type Split struct {
	Train []int
	Val   []int
	Test  []int
}

// Splitter produces train/validation/test partitions over a label table.
// All randomness flows from the configured seed through a StageRNG, so a
// Splitter must not be reused across tables: construct one per run.
type Splitter struct {
	cfg Config
	rng *StageRNG
}

// NewSplitter validates cfg and returns a Splitter for one run.
func NewSplitter(cfg Config) (*Splitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{
		cfg: cfg,
		rng: NewStageRNG(NewExperimentKey(cfg.Seed)),
	}, nil
}

// SplitMonitored partitions the closed-world rows of tbl into
// NSplits*NRepeats (train, val, test) triples. Folds stratify on dense
// (class, protocol) codes; train and validation keep only TCP rows; the
// test candidate passes through the protocol mixer (with fraction 0, i.e.
// pure TCP, unless MonitoredQUIC is set).
func (s *Splitter) SplitMonitored(tbl *labels.Table) ([]Split, error) {
	rows := tbl.Monitored()
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no monitored samples in the label table", ErrConfig)
	}

	codes, enc := stratifyCodes(tbl, rows, true)
	if err := s.checkStrataCounts(codes, enc); err != nil {
		return nil, err
	}

	folds, err := RepeatedStratifiedKFold(rows, codes, s.cfg.NSplits, s.cfg.NRepeats,
		s.rng.ForStage(StageMonitored))
	if err != nil {
		return nil, err
	}

	mixFrac := 0.0
	if s.cfg.MonitoredQUIC {
		mixFrac = s.cfg.QUICFrac
	}
	classes := tbl.Classes()

	splits := make([]Split, 0, len(folds))
	for _, fold := range folds {
		tcpTrainVal := filterTCP(tbl, fold.TrainVal)

		train, val := tcpTrainVal, []int(nil)
		if s.cfg.ValidationSplit > 0 {
			train, val, err = s.stratifiedHoldout(tbl, tcpTrainVal)
			if err != nil {
				return nil, err
			}
		}

		test, err := MixProtocols(tbl, fold.Test, mixFrac, s.rng.ForStage(StageMixer))
		if err != nil {
			return nil, err
		}

		sp := Split{Train: train, Val: val, Test: test}
		if err := s.checkClassCoverage(tbl, sp, classes); err != nil {
			return nil, err
		}
		splits = append(splits, sp)
	}
	return splits, nil
}

// SplitUnmonitored partitions the open-world rows of tbl with group-level
// isolation: no originating site ever straddles train, validation and test.
// Train and validation keep only TCP rows. When WithQUIC is set, a QUICFrac
// fraction of the test candidate's groups contributes its QUIC rows and the
// remainder its TCP rows; otherwise the test side is restricted to TCP.
func (s *Splitter) SplitUnmonitored(tbl *labels.Table) ([]Split, error) {
	rows := tbl.Unmonitored()
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no unmonitored samples in the label table", ErrConfig)
	}
	groups := make([]int, len(rows))
	for i, r := range rows {
		groups[i] = tbl.Group[r]
	}

	folds, err := GroupShuffleSplit(rows, groups, s.cfg.Repetitions(),
		1/float64(s.cfg.NSplits), s.rng.ForStage(StageUnmonitored))
	if err != nil {
		return nil, err
	}

	splits := make([]Split, 0, len(folds))
	for _, fold := range folds {
		tcpTrainVal := filterTCP(tbl, fold.TrainVal)
		if len(tcpTrainVal) == 0 {
			return nil, fmt.Errorf("%w: no tcp samples left for the unmonitored train partition", ErrConfig)
		}

		train, val := tcpTrainVal, []int(nil)
		if s.cfg.ValidationSplit > 0 {
			train, val, err = s.groupedHoldout(tbl, tcpTrainVal)
			if err != nil {
				return nil, err
			}
		}

		test, expectMixed, err := s.mixTestGroups(tbl, fold.Test)
		if err != nil {
			return nil, err
		}

		sp := Split{Train: train, Val: val, Test: test}
		if err := checkUnmonitored(tbl, sp, expectMixed); err != nil {
			return nil, err
		}
		splits = append(splits, sp)
	}
	return splits, nil
}

// Split runs both paths and merges repetition i of each into one combined
// partition, independently shuffling train, validation and test so that row
// order carries no closed/open-world signal.
func (s *Splitter) Split(tbl *labels.Table) ([]Split, error) {
	if err := tbl.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}

	logrus.Debugf("splitting %d rows into %d repetitions (n_splits=%d, n_repeats=%d)",
		tbl.Len(), s.cfg.Repetitions(), s.cfg.NSplits, s.cfg.NRepeats)

	monitored, err := s.SplitMonitored(tbl)
	if err != nil {
		return nil, err
	}
	unmonitored, err := s.SplitUnmonitored(tbl)
	if err != nil {
		return nil, err
	}
	if len(monitored) != len(unmonitored) {
		return nil, fmt.Errorf("%w: %d monitored repetitions but %d unmonitored",
			ErrInvariant, len(monitored), len(unmonitored))
	}

	rng := s.rng.ForStage(StageAssemble)
	splits := make([]Split, 0, len(monitored))
	for i := range monitored {
		sp := Split{
			Train: shuffledConcat(monitored[i].Train, unmonitored[i].Train, rng),
			Val:   shuffledConcat(monitored[i].Val, unmonitored[i].Val, rng),
			Test:  shuffledConcat(monitored[i].Test, unmonitored[i].Test, rng),
		}
		if err := checkDisjoint(sp); err != nil {
			return nil, err
		}
		splits = append(splits, sp)
	}
	return splits, nil
}

// checkStrataCounts fails fast with a descriptive ErrConfig when some
// (class, protocol) stratum cannot fill every fold.
func (s *Splitter) checkStrataCounts(codes []int, enc *stratumEncoder) error {
	counts := make([]int, enc.len())
	for _, c := range codes {
		counts[c]++
	}
	for c, n := range counts {
		if n < s.cfg.NSplits {
			st := enc.stratumOf(c)
			return fmt.Errorf("%w: class %d protocol %q has %d samples, need at least n_splits=%d",
				ErrConfig, st.class, st.protocol, n, s.cfg.NSplits)
		}
	}
	return nil
}

// stratifiedHoldout carves the validation set out of the monitored TCP
// train/validation candidate, stratified by class alone. Every class keeps
// presence on both sides: the per-class holdout is round(frac*n) clamped to
// [1, n-1].
func (s *Splitter) stratifiedHoldout(tbl *labels.Table, rows []int) (train, val []int, err error) {
	codes, enc := stratifyCodes(tbl, rows, false)
	buckets := make([][]int, enc.len())
	for i, c := range codes {
		buckets[c] = append(buckets[c], rows[i])
	}

	rng := s.rng.ForStage(StageValidation)
	for c, bucket := range buckets {
		if len(bucket) < 2 {
			return nil, nil, fmt.Errorf("%w: class %d has %d tcp training samples, need at least 2 for a validation carve",
				ErrConfig, enc.stratumOf(c).class, len(bucket))
		}
		nVal := int(math.Round(s.cfg.ValidationSplit * float64(len(bucket))))
		if nVal < 1 {
			nVal = 1
		}
		if nVal > len(bucket)-1 {
			nVal = len(bucket) - 1
		}

		shuffled := append([]int(nil), bucket...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		val = append(val, shuffled[:nVal]...)
		train = append(train, shuffled[nVal:]...)
	}
	return train, val, nil
}

// groupedHoldout carves the unmonitored validation set by group so that
// validation sites are disjoint from training sites.
func (s *Splitter) groupedHoldout(tbl *labels.Table, rows []int) (train, val []int, err error) {
	groups := make([]int, len(rows))
	for i, r := range rows {
		groups[i] = tbl.Group[r]
	}
	folds, err := GroupShuffleSplit(rows, groups, 1, s.cfg.ValidationSplit,
		s.rng.ForStage(StageValidation))
	if err != nil {
		return nil, nil, err
	}
	return folds[0].TrainVal, folds[0].Test, nil
}

// mixTestGroups resolves the unmonitored test candidate's protocol policy.
// expectMixed reports whether the partition legitimately carries more than
// one protocol (both eligible group sets non-empty).
func (s *Splitter) mixTestGroups(tbl *labels.Table, rows []int) (test []int, expectMixed bool, err error) {
	if !s.cfg.WithQUIC {
		return filterTCP(tbl, rows), false, nil
	}

	groups := make([]int, len(rows))
	for i, r := range rows {
		groups[i] = tbl.Group[r]
	}
	unique := uniqueInts(groups)
	if len(unique) == 0 {
		return nil, false, fmt.Errorf("%w: no groups available for the open-world test partition", ErrConfig)
	}

	nQUIC := int(math.Round(s.cfg.QUICFrac * float64(len(unique))))
	rng := s.rng.ForStage(StageMixer)
	shuffled := append([]int(nil), unique...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	quicEligible := make(map[int]bool, nQUIC)
	for _, g := range shuffled[:nQUIC] {
		quicEligible[g] = true
	}

	for i, r := range rows {
		if quicEligible[groups[i]] != tbl.IsTCP(r) {
			test = append(test, r)
		}
	}
	return test, nQUIC > 0 && nQUIC < len(unique), nil
}

// checkUnmonitored asserts the open-world postconditions: protocol-pure TCP
// train and validation, group isolation across partitions, and a mixed test
// protocol set exactly when the mixture policy makes one possible.
func checkUnmonitored(tbl *labels.Table, sp Split, expectMixed bool) error {
	if len(sp.Train) == 0 || tcpShare(tbl, sp.Train) != 1 {
		return fmt.Errorf("%w: unmonitored train partition is not protocol-pure tcp", ErrInvariant)
	}
	if len(sp.Val) > 0 && tcpShare(tbl, sp.Val) != 1 {
		return fmt.Errorf("%w: unmonitored validation partition is not protocol-pure tcp", ErrInvariant)
	}

	if err := checkGroupIsolation(tbl, sp); err != nil {
		return err
	}

	hasTCP, hasQUIC := false, false
	for _, r := range sp.Test {
		if tbl.IsTCP(r) {
			hasTCP = true
		} else {
			hasQUIC = true
		}
	}
	mixed := hasTCP && hasQUIC
	if mixed != expectMixed {
		return fmt.Errorf("%w: unmonitored test protocol mixture mismatch: mixed=%v, want %v",
			ErrInvariant, mixed, expectMixed)
	}
	return nil
}

// checkGroupIsolation verifies that no group id appears in more than one of
// train, validation and test.
func checkGroupIsolation(tbl *labels.Table, sp Split) error {
	owner := make(map[int]string)
	for _, part := range []struct {
		name string
		rows []int
	}{{"train", sp.Train}, {"val", sp.Val}, {"test", sp.Test}} {
		for _, r := range part.rows {
			g := tbl.Group[r]
			if g == 0 {
				continue // monitored rows carry no group
			}
			if prev, ok := owner[g]; ok && prev != part.name {
				return fmt.Errorf("%w: group %d appears in both %s and %s", ErrInvariant, g, prev, part.name)
			}
			owner[g] = part.name
		}
	}
	return nil
}

// checkClassCoverage asserts that every monitored class is represented in
// train, validation (when enabled) and test of a closed-world split.
// A missing class means the requested stratification cannot be satisfied.
func (s *Splitter) checkClassCoverage(tbl *labels.Table, sp Split, classes []int) error {
	for _, part := range []struct {
		name    string
		rows    []int
		checked bool
	}{
		{"train", sp.Train, true},
		{"val", sp.Val, s.cfg.ValidationSplit > 0},
		{"test", sp.Test, true},
	} {
		if !part.checked {
			continue
		}
		present := make(map[int]bool, len(classes))
		for _, r := range part.rows {
			present[tbl.Class[r]] = true
		}
		for _, c := range classes {
			if !present[c] {
				return fmt.Errorf("%w: class %d has no samples in the %s partition", ErrConfig, c, part.name)
			}
		}
	}
	return nil
}

// checkDisjoint verifies the pairwise disjointness of a combined split.
func checkDisjoint(sp Split) error {
	seen := make(map[int]string, len(sp.Train)+len(sp.Val)+len(sp.Test))
	for _, part := range []struct {
		name string
		rows []int
	}{{"train", sp.Train}, {"val", sp.Val}, {"test", sp.Test}} {
		for _, r := range part.rows {
			if prev, ok := seen[r]; ok {
				return fmt.Errorf("%w: index %d assigned to both %s and %s", ErrInvariant, r, prev, part.name)
			}
			seen[r] = part.name
		}
	}
	return nil
}

// tcpShare returns the fraction of rows carrying the TCP protocol tag.
func tcpShare(tbl *labels.Table, rows []int) float64 {
	if len(rows) == 0 {
		return 0
	}
	indicator := make([]float64, len(rows))
	for i, r := range rows {
		if tbl.IsTCP(r) {
			indicator[i] = 1
		}
	}
	return stat.Mean(indicator, nil)
}

// protocolSet returns the distinct protocols among rows.
func protocolSet(tbl *labels.Table, rows []int) map[string]bool {
	set := make(map[string]bool)
	for _, r := range rows {
		set[tbl.Protocol[r]] = true
	}
	return set
}

// filterTCP returns the subset of rows carrying the TCP protocol tag.
func filterTCP(tbl *labels.Table, rows []int) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		if tbl.IsTCP(r) {
			out = append(out, r)
		}
	}
	return out
}

// shuffledConcat concatenates two index slices and shuffles the result.
func shuffledConcat(a, b []int, rng *rand.Rand) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
