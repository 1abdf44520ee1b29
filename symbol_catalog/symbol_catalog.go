// Package symbol_catalog accumulates one record per distinct (spelling, kind) pair seen
// during a scan.
package symbol_catalog

import (
	"github.com/akss-tools/namefix/case_formatter"
	"github.com/akss-tools/namefix/code_analyzer/models"
	"github.com/akss-tools/namefix/word_segmenter/contracts"
)

// Key identifies a record. The same spelling used as two kinds is tracked twice.
type Key struct {
	Spelling string
	Kind     models.SymbolKind
}

// SymbolRecord is the first sighting of a key together with its segmentation.
type SymbolRecord struct {
	Spelling   string
	Kind       models.SymbolKind
	Tokens     []string
	File       string
	SegmentErr error
}

// NewName derives the target spelling for the currently configured conventions.
func (r SymbolRecord) NewName(conventions case_formatter.Conventions) string {
	return case_formatter.Format(r.Tokens, conventions.For(r.Kind))
}

// Flagged reports whether segmentation produced nothing usable.
func (r SymbolRecord) Flagged() bool {
	return len(r.Tokens) == 0
}

// Catalog owns the records of one scan session.
type Catalog struct {
	segmenter contracts.IWordSegmenter
	records   []SymbolRecord
	index     map[Key]int
}

// NewCatalog returns an empty catalog that segments through segmenter.
func NewCatalog(segmenter contracts.IWordSegmenter) *Catalog {
	return &Catalog{
		segmenter: segmenter,
		index:     make(map[Key]int),
	}
}

// Register records spelling as kind, first seen in file. Registering a known key is a no-op.
func (c *Catalog) Register(spelling string, kind models.SymbolKind, file string) {
	if spelling == "" {
		return
	}
	key := Key{Spelling: spelling, Kind: kind}
	if _, ok := c.index[key]; ok {
		return
	}

	tokens, err := c.segmenter.Segment(spelling)
	if err != nil {
		tokens = nil
	}

	c.index[key] = len(c.records)
	c.records = append(c.records, SymbolRecord{
		Spelling:   spelling,
		Kind:       kind,
		Tokens:     tokens,
		File:       file,
		SegmentErr: err,
	})
}

// RegisterOccurrences registers every occurrence in order.
func (c *Catalog) RegisterOccurrences(occurrences []models.Occurrence) {
	for _, o := range occurrences {
		c.Register(o.Spelling, o.Kind, o.File)
	}
}

// All returns the records in discovery order.
func (c *Catalog) All() []SymbolRecord {
	out := make([]SymbolRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Lookup finds the record for (spelling, kind).
func (c *Catalog) Lookup(spelling string, kind models.SymbolKind) (SymbolRecord, bool) {
	i, ok := c.index[Key{Spelling: spelling, Kind: kind}]
	if !ok {
		return SymbolRecord{}, false
	}
	return c.records[i], true
}

// Len returns the number of distinct records.
func (c *Catalog) Len() int {
	return len(c.records)
}
