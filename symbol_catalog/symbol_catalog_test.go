package symbol_catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akss-tools/namefix/case_formatter"
	"github.com/akss-tools/namefix/code_analyzer/models"
)

// countingSegmenter splits on underscores and records every call.
type countingSegmenter struct {
	calls map[string]int
}

func (s *countingSegmenter) Segment(identifier string) ([]string, error) {
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[identifier]++
	var words []string
	for _, w := range strings.Split(identifier, "_") {
		if w != "" {
			words = append(words, strings.ToLower(w))
		}
	}
	if len(words) == 0 {
		return nil, errors.New("no words")
	}
	return words, nil
}

func TestRegister_FirstSightingWins(t *testing.T) {
	seg := &countingSegmenter{}
	c := NewCatalog(seg)

	c.Register("max_count", models.Variable, "a.cpp")
	c.Register("max_count", models.Variable, "b.cpp")

	require.Equal(t, 1, c.Len())
	rec, ok := c.Lookup("max_count", models.Variable)
	require.True(t, ok)
	assert.Equal(t, "a.cpp", rec.File)
	assert.Equal(t, []string{"max", "count"}, rec.Tokens)
	assert.Equal(t, 1, seg.calls["max_count"])
}

func TestRegister_KindIsPartOfIdentity(t *testing.T) {
	seg := &countingSegmenter{}
	c := NewCatalog(seg)

	c.Register("run_job", models.Variable, "a.cpp")
	c.Register("run_job", models.Function, "b.cpp")

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2, seg.calls["run_job"])

	fn, ok := c.Lookup("run_job", models.Function)
	require.True(t, ok)
	assert.Equal(t, "b.cpp", fn.File)

	_, ok = c.Lookup("run_job", models.Class)
	assert.False(t, ok)
}

func TestAll_DiscoveryOrder(t *testing.T) {
	c := NewCatalog(&countingSegmenter{})
	c.RegisterOccurrences([]models.Occurrence{
		{Spelling: "zeta", Kind: models.Variable, File: "a.cpp"},
		{Spelling: "alpha", Kind: models.Function, File: "a.cpp"},
		{Spelling: "zeta", Kind: models.Variable, File: "b.cpp"},
		{Spelling: "mid", Kind: models.Class, File: "b.cpp"},
	})

	var spellings []string
	for _, r := range c.All() {
		spellings = append(spellings, r.Spelling)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, spellings)
}

func TestAll_ReturnsCopy(t *testing.T) {
	c := NewCatalog(&countingSegmenter{})
	c.Register("foo", models.Variable, "a.cpp")

	all := c.All()
	all[0].Spelling = "changed"

	rec, ok := c.Lookup("foo", models.Variable)
	require.True(t, ok)
	assert.Equal(t, "foo", rec.Spelling)
}

func TestRegister_SegmentationFailureIsFlagged(t *testing.T) {
	c := NewCatalog(&countingSegmenter{})
	c.Register("__", models.Variable, "a.cpp")
	c.Register("", models.Variable, "a.cpp")

	require.Equal(t, 1, c.Len())
	rec := c.All()[0]
	assert.True(t, rec.Flagged())
	assert.Error(t, rec.SegmentErr)
	assert.Equal(t, "", rec.NewName(case_formatter.DefaultConventions))
}

func TestNewName_RecomputedFromConventions(t *testing.T) {
	c := NewCatalog(&countingSegmenter{})
	c.Register("max_count", models.Variable, "a.cpp")
	rec := c.All()[0]

	upper := case_formatter.Conventions{Variable: case_formatter.UpperCase, Function: case_formatter.CamelBack, Class: case_formatter.CamelCase}
	camel := upper
	camel.Variable = case_formatter.CamelBack

	assert.Equal(t, "MAX_COUNT", rec.NewName(upper))
	assert.Equal(t, "maxCount", rec.NewName(camel))
	assert.Equal(t, "MAX_COUNT", rec.NewName(upper))
}
