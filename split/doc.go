// Package split produces reproducible train/validation/test partitions over
// a labeled traffic-trace table for protocol-generalization experiments.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - splitter.go: the monitored/unmonitored split paths and combined assembly
//   - kfold.go, groupshuffle.go: the two partitioning primitives
//   - mixer.go: the protocol-mixture policy applied to monitored test sets
//
// # Architecture
//
// The split package holds the algorithms; per-trace metadata lives in the
// pure-data sub-package split/labels. A Splitter runs NSplits*NRepeats
// repetitions. Each repetition partitions the closed-world (monitored) rows
// with a repeated stratified k-fold over dense (class, protocol) codes, and
// the open-world (unmonitored) rows with grouped shuffle-splits so that no
// originating site straddles partitions. Training and validation sides are
// always restricted to TCP; test sides are either pure TCP or carry a
// controlled TCP/QUIC mixture.
//
// # Randomness
//
// All randomness derives from a single seed through a StageRNG (rng.go):
// each algorithm stage draws from its own deterministically derived stream,
// and within a stage the consumption order is fixed (repetition-major,
// monitored before unmonitored, train before validation before test mixing).
// Two runs with the same seed and configuration emit byte-identical records.
package split
