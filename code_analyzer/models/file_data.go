package models

import (
	"fmt"
	"time"
)

// SymbolKind is the syntactic category of a declaration.
type SymbolKind int

const (
	Variable SymbolKind = iota
	Function
	Class
)

// SymbolKinds lists every kind in display order.
var SymbolKinds = []SymbolKind{Variable, Function, Class}

func (k SymbolKind) String() string {
	switch k {
	case Variable:
		return "var"
	case Function:
		return "func"
	case Class:
		return "cls"
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

// ParseSymbolKind accepts both the short ("var") and long ("variable") spelling.
func ParseSymbolKind(s string) (SymbolKind, error) {
	switch s {
	case "var", "variable", "Variable":
		return Variable, nil
	case "func", "function", "Function":
		return Function, nil
	case "cls", "class", "Class":
		return Class, nil
	}
	return 0, fmt.Errorf("unknown symbol kind %q", s)
}

// Occurrence is one declaration found by the AST walker.
type Occurrence struct {
	Spelling string
	Kind     SymbolKind
	File     string
	Line     int
}

// ProjectFileSet is the ordered, deduplicated list of candidate source files.
type ProjectFileSet struct {
	SourceDir  string
	IncludeDir string
	Files      []string
}

// Len returns the number of candidate files.
func (fs *ProjectFileSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.Files)
}

// Rename flags
const (
	FlagEmpty     = "empty"
	FlagCollision = "collision"
)

// Rename is one planned old -> new substitution.
type Rename struct {
	Old   string
	New   string
	Kind  SymbolKind
	File  string
	Flags []string
}

// IsNoop reports whether applying the rename would not change anything.
func (r Rename) IsNoop() bool {
	return r.New == "" || r.New == r.Old
}

// Flagged reports whether the planner attached any warning to the rename.
func (r Rename) Flagged() bool {
	return len(r.Flags) > 0
}

// BackupSnapshot describes a verbatim pre-mutation copy of the project files.
type BackupSnapshot struct {
	Dir        string         `json:"-"`
	SourceRoot string         `json:"source_root"`
	CreatedAt  time.Time      `json:"created_at"`
	Files      []FileSnapshot `json:"files"`
}

// FileSnapshot represents the state of a single backed-up file
type FileSnapshot struct {
	Name         string `json:"name"`
	OriginalPath string `json:"original_path"`
	Size         int64  `json:"size"`
	Hash         string `json:"hash"`
}
