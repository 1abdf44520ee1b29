package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akss-tools/namefix/code_analyzer/models"
)

func TestEffectiveRenames(t *testing.T) {
	plan := []models.Rename{
		{Old: "max_count", New: "MAX_COUNT"},
		{Old: "MAX_SIZE", New: "MAX_SIZE"},
		{Old: "__", New: "", Flags: []string{models.FlagEmpty}},
		{Old: "buffer", New: "Buffer"},
	}

	got := effectiveRenames(plan)
	assert.Equal(t, []string{"max_count", "__", "buffer"}, []string{got[0].Old, got[1].Old, got[2].Old})
}

func TestDisplayPath(t *testing.T) {
	cwd := filepath.Join(string(filepath.Separator), "work", "proj")

	assert.Equal(t, filepath.Join("src", "main.cpp"), displayPath(cwd, filepath.Join(cwd, "src", "main.cpp")))

	outside := filepath.Join(string(filepath.Separator), "other", "a.h")
	assert.Equal(t, outside, displayPath(cwd, outside))
}
