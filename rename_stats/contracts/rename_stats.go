package contracts

import "io"

// Stats is a snapshot of the session counters.
type Stats struct {
	FilesScanned    int
	Symbols         int
	DiscoveryErrors int
	RenamesPlanned  int
	Noops           int
	Flagged         int
	FilesChanged    int
	Replacements    int
}

type IRenameStats interface {
	RecordScan(filesScanned int, symbols int, discoveryErrors int)
	RecordPlan(planned int, noops int, flagged int)
	RecordApply(filesChanged int, replacements int)
	GetStats() Stats
	DisplayStats(w io.Writer)
	ClearStats()
}
