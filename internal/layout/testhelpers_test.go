package layout

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/roach88/spikeview/internal/canon"
)

func testAddr(i int) canon.Address {
	return canon.Address(canon.AddressScheme + strings.Repeat(strconv.Itoa(i), 64))
}

// sortingLayoutExample mirrors the two-row arrangement used by the sorting
// layout fixtures: a splitter over units table and raster plot, then a box
// of autocorrelograms and average waveforms.
func sortingLayoutExample() *Document {
	root := &Box{
		Direction: Vertical,
		Items: []Node{
			&Splitter{
				Direction: Horizontal,
				Items:     []Node{ViewRef("0"), ViewRef("1")},
				ItemProperties: []canon.Object{
					Hint("minSize", 100, "stretch", 1),
					Hint("minSize", 200, "stretch", 3),
				},
			},
			&Box{
				Direction:      Horizontal,
				Items:          []Node{ViewRef("2"), ViewRef("3")},
				ItemProperties: []canon.Object{Hint("stretch", 1), Hint("stretch", 1)},
			},
		},
	}
	types := []string{"UnitsTable", "RasterPlot", "Autocorrelograms", "AverageWaveforms"}
	doc := &Document{Kind: KindSortingLayout, Layout: root}
	for i, typ := range types {
		doc.Views = append(doc.Views, ViewEntry{ViewID: strconv.Itoa(i), Type: typ, DataURI: testAddr(i)})
	}
	return doc
}

type fakeRecord struct {
	typ string
	val canon.Value
	err error
}

func (r fakeRecord) Type() string                { return r.typ }
func (r fakeRecord) Value() (canon.Value, error) { return r.val, r.err }

// memPutter hashes values without storing them.
type memPutter struct {
	mu   sync.Mutex
	puts int
	err  error
}

func (p *memPutter) Put(ctx context.Context, v canon.Value) (canon.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.puts++
	addr, _, err := canon.Sum(v)
	return addr, err
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}
