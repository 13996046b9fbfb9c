package views

import (
	"fmt"
	"math"
)

// float32s narrows seconds or amplitudes to the 32-bit published format.
func float32s(xs []float64) []float32 {
	out := make([]float32, len(xs))
	for i, x := range xs {
		out[i] = float32(x)
	}
	return out
}

// int32s narrows counts to 32-bit, failing on overflow rather than wrapping.
func int32s(xs []int64) ([]int32, error) {
	out := make([]int32, len(xs))
	for i, x := range xs {
		if x > math.MaxInt32 || x < math.MinInt32 {
			return nil, fmt.Errorf("value %d at index %d overflows int32", x, i)
		}
		out[i] = int32(x)
	}
	return out, nil
}

func channelIDs32(ids []int) ([]int32, error) {
	out := make([]int32, len(ids))
	for i, id := range ids {
		if id > math.MaxInt32 || id < math.MinInt32 {
			return nil, fmt.Errorf("channel id %d overflows int32", id)
		}
		out[i] = int32(id)
	}
	return out, nil
}
