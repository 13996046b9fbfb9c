package publish

import (
	"github.com/roach88/spikeview/internal/canon"
	"github.com/roach88/spikeview/internal/layout"
	"github.com/roach88/spikeview/internal/views"
)

// DefaultViews are the views published when none are configured.
var DefaultViews = []string{
	views.TypeUnitsTable,
	views.TypeRasterPlot,
	views.TypeAutocorrelograms,
	views.TypeAverageWaveforms,
}

// DefaultLayout returns the two-row sorting layout: units table and raster
// plot side by side in a splitter, then autocorrelograms next to average
// waveforms. View ids are view types.
func DefaultLayout() layout.Node {
	return &layout.Box{
		Direction: layout.Vertical,
		Items: []layout.Node{
			&layout.Splitter{
				Direction: layout.Horizontal,
				Items: []layout.Node{
					layout.ViewRef(views.TypeUnitsTable),
					layout.ViewRef(views.TypeRasterPlot),
				},
				ItemProperties: []canon.Object{
					layout.Hint("minSize", 100, "stretch", 1),
					layout.Hint("minSize", 200, "stretch", 3),
				},
			},
			&layout.Box{
				Direction: layout.Horizontal,
				Items: []layout.Node{
					layout.ViewRef(views.TypeAutocorrelograms),
					layout.ViewRef(views.TypeAverageWaveforms),
				},
				ItemProperties: []canon.Object{
					layout.Hint("stretch", 1),
					layout.Hint("stretch", 1),
				},
			},
		},
	}
}
