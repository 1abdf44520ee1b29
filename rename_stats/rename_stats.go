package rename_stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/akss-tools/namefix/constants/lipgloss"
	"github.com/akss-tools/namefix/rename_stats/contracts"
)

// renameStats implementation
type renameStats struct {
	stats contracts.Stats
}

// NewRenameStats creates a new, zeroed counter set
func NewRenameStats() contracts.IRenameStats {
	return &renameStats{}
}

// RecordScan replaces the scan counters; a rescan starts over.
func (rs *renameStats) RecordScan(filesScanned int, symbols int, discoveryErrors int) {
	rs.stats.FilesScanned = filesScanned
	rs.stats.Symbols = symbols
	rs.stats.DiscoveryErrors = discoveryErrors
}

func (rs *renameStats) RecordPlan(planned int, noops int, flagged int) {
	rs.stats.RenamesPlanned = planned
	rs.stats.Noops = noops
	rs.stats.Flagged = flagged
}

// RecordApply accumulates, so repeated applies in one session add up.
func (rs *renameStats) RecordApply(filesChanged int, replacements int) {
	rs.stats.FilesChanged += filesChanged
	rs.stats.Replacements += replacements
}

func (rs *renameStats) GetStats() contracts.Stats {
	return rs.stats
}

func (rs *renameStats) DisplayStats(w io.Writer) {
	s := rs.stats

	var lines []string
	lines = append(lines, fmt.Sprintf("Files Scanned: %d - Symbols: %d", s.FilesScanned, s.Symbols))
	lines = append(lines, fmt.Sprintf("Renames: %d (%d unchanged, %d flagged)", s.RenamesPlanned-s.Noops, s.Noops, s.Flagged))
	lines = append(lines, fmt.Sprintf("Files Changed: %d - Replacements: %d", s.FilesChanged, s.Replacements))
	if s.DiscoveryErrors > 0 {
		lines = append(lines, lipgloss.Yellow.Render(fmt.Sprintf("Discovery Errors: %d", s.DiscoveryErrors)))
	}

	fmt.Fprintln(w, lipgloss.BoxStyle.Render(strings.Join(lines, "\n")))
}

func (rs *renameStats) ClearStats() {
	rs.stats = contracts.Stats{}
}
