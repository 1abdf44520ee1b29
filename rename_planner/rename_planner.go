// Package rename_planner turns catalog records into an ordered list of renames.
package rename_planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/akss-tools/namefix/case_formatter"
	"github.com/akss-tools/namefix/code_analyzer/models"
	"github.com/akss-tools/namefix/symbol_catalog"
)

// Plan produces one rename per record, in catalog order. No-op renames are kept so the
// review listing can show them; flagged renames are kept so the caller decides.
func Plan(records []symbol_catalog.SymbolRecord, conventions case_formatter.Conventions) []models.Rename {
	renames := make([]models.Rename, 0, len(records))

	type target struct {
		kind models.SymbolKind
		name string
	}
	owners := make(map[target][]int)

	for _, rec := range records {
		r := models.Rename{
			Old:  rec.Spelling,
			New:  rec.NewName(conventions),
			Kind: rec.Kind,
			File: rec.File,
		}
		if rec.Flagged() || r.New == "" {
			r.Flags = append(r.Flags, models.FlagEmpty)
		} else {
			key := target{kind: r.Kind, name: r.New}
			owners[key] = append(owners[key], len(renames))
		}
		renames = append(renames, r)
	}

	for _, idx := range owners {
		if len(idx) < 2 {
			continue
		}
		for _, i := range idx {
			renames[i].Flags = append(renames[i].Flags, models.FlagCollision)
		}
	}

	return renames
}

// Column is a sortable listing column.
type Column string

const (
	ColumnFile Column = "file"
	ColumnType Column = "type"
	ColumnOld  Column = "old"
	ColumnNew  Column = "new"
)

// Columns lists the sortable columns in display order.
var Columns = []Column{ColumnFile, ColumnType, ColumnOld, ColumnNew}

// ParseColumn accepts a column name case-insensitively.
func ParseColumn(s string) (Column, error) {
	for _, c := range Columns {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown sort column %q", s)
}

// SortBy returns a copy of renames stably sorted by column. The plan itself is never reordered.
func SortBy(renames []models.Rename, column Column, reverse bool) []models.Rename {
	out := make([]models.Rename, len(renames))
	copy(out, renames)

	key := func(r models.Rename) string {
		switch column {
		case ColumnFile:
			return r.File
		case ColumnType:
			return r.Kind.String()
		case ColumnOld:
			return r.Old
		case ColumnNew:
			return r.New
		}
		return ""
	}

	sort.SliceStable(out, func(i, j int) bool {
		if reverse {
			return key(out[i]) > key(out[j])
		}
		return key(out[i]) < key(out[j])
	})
	return out
}
