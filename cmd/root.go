package cmd

import (
	"encoding/json"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tracesplit/tracesplit/split"
)

var (
	// CLI flags shared by the subcommands
	logLevel string // Log verbosity level

	// CLI flags for the split subcommand
	nSplits          int     // Number of folds k
	nRepeats         int     // Number of k-fold repetitions
	validationSplit  float64 // Fraction of the training set set aside for validation
	seed             int64   // Seed for the random number generation
	withQUIC         bool    // Mix protocols in the open-world test partitions
	monitoredQUIC    bool    // Mix protocols in the closed-world test partitions
	quicFrac         float64 // Target QUIC fraction for mixed test partitions
	experimentConfig string  // Path to a YAML file of named experiment presets
	experiment       string  // Name of the preset to apply

	// CLI flags for the select subcommand
	nTraces  int // Traces to keep per class, across all protocols
	nClasses int // Classes to keep; non-positive keeps all eligible classes
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "tracesplit",
	Short: "Reproducible train/validation/test partitioning for traffic-trace experiments",
}

// splitCmd turns a label CSV into one JSON partition record per repetition.
var splitCmd = &cobra.Command{
	Use:   "split LABELS [OUTFILE]",
	Short: "Split traces into train, validation and test index sets",
	Long: `Split the traces listed in LABELS into training, validation and test
datasets for the protocol-generalization experiment. The output is a JSON
stream with one record per repetition, each containing the keys "train",
"val", "test" and "train-val", the latter a combined permutation of "train"
and "val". OUTFILE defaults to stdout.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		start := time.Now()

		cfg := split.Config{
			NSplits:         nSplits,
			NRepeats:        nRepeats,
			ValidationSplit: validationSplit,
			WithQUIC:        withQUIC,
			MonitoredQUIC:   monitoredQUIC,
			QUICFrac:        quicFrac,
			Seed:            seed,
		}
		if experimentConfig != "" {
			preset := GetExperiment(experimentConfig, experiment)
			if preset == nil {
				logrus.Fatalf("Experiment %q not found in %s", experiment, experimentConfig)
			}
			cfg = preset.apply(cfg, cmd.Flags())
		}

		table, err := split.LoadLabels(args[0])
		if err != nil {
			logrus.Fatalf("Unable to read labels: %v", err)
		}

		logrus.Infof("Creating splitter with %+v", cfg)
		splitter, err := split.NewSplitter(cfg)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		records, err := splitter.Records(table)
		if err != nil {
			logrus.Fatalf("Splitting failed: %v", err)
		}

		out := os.Stdout
		if len(args) == 2 {
			out, err = os.Create(args[1])
			if err != nil {
				logrus.Fatalf("Unable to open output file: %v", err)
			}
			defer out.Close() //nolint:errcheck // flushed by WriteRecords
		}
		if err := split.WriteRecords(out, records); err != nil {
			logrus.Fatalf("Writing records failed: %v", err)
		}

		logrus.Infof("Emitted %d repetitions in %.2fs", len(records), time.Since(start).Seconds())
	},
}

// selectCmd filters traces to a balanced per-class/per-protocol subset.
var selectCmd = &cobra.Command{
	Use:   "select LABELS [OUTFILE]",
	Short: "Select a balanced subset of traces for an experiment",
	Long: `Filter the traces listed in LABELS to classes with a full complement of
samples per protocol and region, and write the retained row indices as a
single JSON array. OUTFILE defaults to stdout.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		table, err := split.LoadLabels(args[0])
		if err != nil {
			logrus.Fatalf("Unable to read labels: %v", err)
		}

		rng := split.NewStageRNG(split.NewExperimentKey(seed)).ForStage(split.StageSelection)
		indices, err := split.SelectTraces(table, nTraces, nClasses, rng)
		if err != nil {
			logrus.Fatalf("Selection failed: %v", err)
		}

		out := os.Stdout
		if len(args) == 2 {
			out, err = os.Create(args[1])
			if err != nil {
				logrus.Fatalf("Unable to open output file: %v", err)
			}
			defer out.Close() //nolint:errcheck
		}
		if err := json.NewEncoder(out).Encode(indices); err != nil {
			logrus.Fatalf("Writing indices failed: %v", err)
		}
		logrus.Infof("Selected %d traces", len(indices))
	},
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	splitCmd.Flags().IntVar(&nSplits, "n-splits", 10, "Split the data into k folds")
	splitCmd.Flags().IntVar(&nRepeats, "n-repeats", 2, "Repeat the k-folds n times")
	splitCmd.Flags().Float64Var(&validationSplit, "validation-split", 0.1, "Set aside this fraction of the training set for validation")
	splitCmd.Flags().Int64Var(&seed, "seed", 16248, "Seed the random number generation")
	splitCmd.Flags().BoolVar(&withQUIC, "with-quic", false, "Mix TCP and QUIC groups in the open-world test partitions")
	splitCmd.Flags().BoolVar(&monitoredQUIC, "monitored-quic", false, "Mix TCP and QUIC samples in the closed-world test partitions")
	splitCmd.Flags().Float64Var(&quicFrac, "quic-frac", 0.5, "Target QUIC fraction for mixed test partitions")
	splitCmd.Flags().StringVar(&experimentConfig, "experiment-config", "", "YAML file of named experiment presets")
	splitCmd.Flags().StringVar(&experiment, "experiment", "", "Name of the preset to apply from --experiment-config")

	selectCmd.Flags().IntVar(&nTraces, "n-traces", 200, "Traces to keep per class, across all protocols")
	selectCmd.Flags().IntVar(&nClasses, "n-classes", 0, "Classes to keep (non-positive keeps all eligible classes)")
	selectCmd.Flags().Int64Var(&seed, "seed", 16248, "Seed the random number generation")

	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(selectCmd)
}

// Execute runs the CLI. It exits the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
