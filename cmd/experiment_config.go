package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/tracesplit/tracesplit/split"
)

// Define struct for YAML
type ExperimentConfig struct {
	Experiments map[string]Experiment `yaml:"experiments"`
}

type Experiment struct {
	NSplits         int     `yaml:"n_splits"`
	NRepeats        int     `yaml:"n_repeats"`
	ValidationSplit float64 `yaml:"validation_split"`
	WithQUIC        bool    `yaml:"with_quic"`
	MonitoredQUIC   bool    `yaml:"monitored_quic"`
	QUICFrac        float64 `yaml:"quic_frac"`
	Seed            int64   `yaml:"seed"`
}

// GetExperiment loads the named preset from a YAML experiment file, or nil
// when the file carries no preset of that name.
func GetExperiment(path string, name string) *Experiment {
	// Read YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Fatalf("Unable to read experiment config %s: %v", path, err)
	}

	// Parse YAML
	var cfg ExperimentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Fatalf("Unable to parse experiment config %s: %v", path, err)
	}

	if exp, ok := cfg.Experiments[name]; ok {
		logrus.Infof("Using preset experiment %v", name)
		return &exp
	}
	return nil
}

// apply overlays the preset onto cfg. Flags the user set explicitly on the
// command line win over preset values.
func (e *Experiment) apply(cfg split.Config, flags *pflag.FlagSet) split.Config {
	out := split.Config{
		NSplits:         e.NSplits,
		NRepeats:        e.NRepeats,
		ValidationSplit: e.ValidationSplit,
		WithQUIC:        e.WithQUIC,
		MonitoredQUIC:   e.MonitoredQUIC,
		QUICFrac:        e.QUICFrac,
		Seed:            e.Seed,
	}
	if flags.Changed("n-splits") {
		out.NSplits = cfg.NSplits
	}
	if flags.Changed("n-repeats") {
		out.NRepeats = cfg.NRepeats
	}
	if flags.Changed("validation-split") {
		out.ValidationSplit = cfg.ValidationSplit
	}
	if flags.Changed("with-quic") {
		out.WithQUIC = cfg.WithQUIC
	}
	if flags.Changed("monitored-quic") {
		out.MonitoredQUIC = cfg.MonitoredQUIC
	}
	if flags.Changed("quic-frac") {
		out.QUICFrac = cfg.QUICFrac
	}
	if flags.Changed("seed") {
		out.Seed = cfg.Seed
	}
	return out
}
