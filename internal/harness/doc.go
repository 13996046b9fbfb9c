// Package harness runs correlogram conformance scenarios.
//
// A scenario is a YAML file naming a sampling rate, window, bin size, one
// or two spike trains and the expected outcome: either bin counts or an
// error code. Scenarios keep edge cases of the histogram convention
// readable and reviewable outside Go code:
//
//	name: three_spikes
//	description: lags of 10 and 20 ms each way, no self pairs
//	sampling_rate: 1000
//	window_ms: 50
//	bin_ms: 10
//	train: [0, 10, 20]
//	expect:
//	  bin_counts: [0, 0, 0, 1, 2, 0, 2, 1, 0, 0]
//
// Successful outcomes are also rendered as text and compared against
// golden files in testdata/golden.
package harness
