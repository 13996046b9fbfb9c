// Package correlogram computes binned histograms of spike time differences.
//
// An autocorrelogram histograms the lags between every pair of distinct
// spikes of one train; a cross-correlogram histograms the lags t_b - t_a
// between two trains. Lags are histogrammed over a symmetric window
// [-WindowSize, +WindowSize] split into 2*WindowSize/BinSize bins.
//
// # Binning convention
//
// A lag d (in seconds) falls into bin floor((d + WindowSize) / BinSize), so
// bin i covers [BinEdges[i], BinEdges[i+1]). Lags with |d| <= WindowSize are
// counted; a lag of exactly +WindowSize has no bin of its own and is clamped
// into the last one. Lags that sit on an edge to within floating point noise
// are snapped onto it first.
//
// Zero lag lands in bin NumBins()/2, the first non-negative bin. Cross(a, b)
// is the reverse of Cross(b, a) only for lags strictly inside a bin: a lag on
// an interior edge moves to the bin above it on both sides of the swap.
//
// # Complexity
//
// Both trains must be sorted (non-decreasing). Each anchor spike scans only
// the spikes of the other train inside the window, using a lower pointer
// that never moves backwards, so the cost is O(N + M + pairs in window).
package correlogram
