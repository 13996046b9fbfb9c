package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden compares the rendered outcome against
// testdata/golden/<scenario>.golden. Regenerate with go test -update.
func AssertGolden(t *testing.T, s *Scenario, o *Outcome) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, []byte(Render(s, o)))
}
