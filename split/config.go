package split

import "fmt"

// Config groups the parameters of one splitting run. The zero value is not
// usable; DefaultConfig matches the defaults of the original experiment
// pipeline.
type Config struct {
	NSplits         int     // fold count of the stratified k-fold (>= 2)
	NRepeats        int     // independent repetitions of the k-fold (>= 1)
	ValidationSplit float64 // fraction of the train side carved out for validation, 0 disables
	WithQUIC        bool    // open-world test sets carry a group-level TCP/QUIC mixture
	MonitoredQUIC   bool    // closed-world test sets pass through the protocol mixer
	QUICFrac        float64 // target QUIC fraction for mixed test sets
	Seed            int64   // master seed for all RNG stages
}

// DefaultConfig returns the parameter set used by the background experiment.
func DefaultConfig() Config {
	return Config{
		NSplits:         10,
		NRepeats:        2,
		ValidationSplit: 0.1,
		QUICFrac:        0.5,
		Seed:            16248,
	}
}

// Validate checks the configuration surface. All failures are ErrConfig.
func (c Config) Validate() error {
	if c.NSplits < 2 {
		return fmt.Errorf("%w: n_splits must be at least 2, got %d", ErrConfig, c.NSplits)
	}
	if c.NRepeats < 1 {
		return fmt.Errorf("%w: n_repeats must be at least 1, got %d", ErrConfig, c.NRepeats)
	}
	if c.ValidationSplit < 0 || c.ValidationSplit >= 1 {
		return fmt.Errorf("%w: validation_split must be in [0, 1), got %v", ErrConfig, c.ValidationSplit)
	}
	if c.QUICFrac < 0 || c.QUICFrac > 1 {
		return fmt.Errorf("%w: quic_frac must be in [0, 1], got %v", ErrConfig, c.QUICFrac)
	}
	return nil
}

// Repetitions returns the number of emitted splits, n_splits * n_repeats.
func (c Config) Repetitions() int {
	return c.NSplits * c.NRepeats
}
