// Package exiftool renders metadata write plans into exiftool argument
// files, executes them in batches, and classifies each invocation's output
// so the caller can tell a clean merge from a partial or a hard failure.
//
// One exiftool process handles an entire batch: the argument file chains
// per-file command blocks with -execute separators and puts the invariant
// flags behind -common_args, so process startup cost is paid once per
// batch instead of once per file.
package exiftool
