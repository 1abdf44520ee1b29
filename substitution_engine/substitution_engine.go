// Package substitution_engine rewrites planned renames into the project files as
// whole-identifier text substitution.
//
// The rewrite is heuristic, not AST-verified: occurrences inside comments and string
// literals are renamed too, and two guards skip occurrences that are likely not references
// to the renamed symbol. An occurrence preceded by "::" is a qualified name from another
// scope. An occurrence followed by whitespace and then a word character is treated as a
// type name in a declaration ("Foo bar;") and left alone.
package substitution_engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pterm/pterm"

	"github.com/akss-tools/namefix/code_analyzer/models"
	"github.com/akss-tools/namefix/utils"
)

// SubstitutionIOError reports a read or write failure on one file.
type SubstitutionIOError struct {
	Path string
	Op   string
	Err  error
}

func (e *SubstitutionIOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SubstitutionIOError) Unwrap() error {
	return e.Err
}

// matcher finds whole-identifier occurrences of one spelling.
type matcher struct {
	old string
	new string
	re  *regexp.Regexp
}

func newMatcher(old, new string) *matcher {
	return &matcher{
		old: old,
		new: new,
		re:  regexp.MustCompile(`\b` + regexp.QuoteMeta(old) + `\b`),
	}
}

func (m *matcher) replace(content string) (string, int) {
	locs := m.re.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return content, 0
	}

	var b strings.Builder
	last, n := 0, 0
	for _, loc := range locs {
		if isQualified(content, loc[0]) || isFollowedByWord(content, loc[1]) {
			continue
		}
		if n == 0 {
			b.Grow(len(content))
		}
		b.WriteString(content[last:loc[0]])
		b.WriteString(m.new)
		last = loc[1]
		n++
	}
	if n == 0 {
		return content, 0
	}
	b.WriteString(content[last:])
	return b.String(), n
}

func isQualified(content string, start int) bool {
	return start >= 2 && content[start-2:start] == "::"
}

// isFollowedByWord reports whether content[end:] is one or more whitespace characters
// followed by a word character.
func isFollowedByWord(content string, end int) bool {
	i := end
	for i < len(content) {
		r, size := utf8.DecodeRuneInString(content[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	if i == end || i >= len(content) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(content[i:])
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ReplaceIdentifier replaces every guarded whole-identifier occurrence of old with new and
// returns the new content and the number of replacements.
func ReplaceIdentifier(content, old, new string) (string, int) {
	if old == "" || new == "" || old == new {
		return content, 0
	}
	return newMatcher(old, new).replace(content)
}

// Rewrite applies renames as successive passes in order. A later rename sees the output of
// the earlier ones, so [a->b, b->c] turns "a" into "c". No-op renames are skipped.
func Rewrite(content string, renames []models.Rename) (string, int) {
	return rewrite(content, compile(renames))
}

func compile(renames []models.Rename) []*matcher {
	var matchers []*matcher
	for _, r := range renames {
		if r.Old == "" || r.IsNoop() {
			continue
		}
		matchers = append(matchers, newMatcher(r.Old, r.New))
	}
	return matchers
}

func rewrite(content string, matchers []*matcher) (string, int) {
	total := 0
	for _, m := range matchers {
		var n int
		content, n = m.replace(content)
		total += n
	}
	return content, total
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path         string
	Replacements int
	Written      bool
}

// Result summarises one Apply run.
type Result struct {
	Files        []FileResult
	FilesChanged int
	Replacements int
}

// FileChange is a previewed rewrite of one file.
type FileChange struct {
	Path         string
	Before       string
	After        string
	Replacements int
}

// Engine applies renames to files on disk.
type Engine struct {
	logger *pterm.Logger
}

// NewEngine returns an engine that logs through logger. A nil logger discards output.
func NewEngine(logger *pterm.Logger) *Engine {
	if logger == nil {
		logger = pterm.DefaultLogger.WithWriter(io.Discard)
	}
	return &Engine{logger: logger}
}

// Apply rewrites every file. Files without a match are not touched. A failure on one file
// does not stop the others; all failures are returned joined. Nothing is rolled back here.
func (e *Engine) Apply(ctx context.Context, files []string, renames []models.Rename) (*Result, error) {
	matchers := compile(renames)
	result := &Result{}
	var errs []error

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		fr, err := e.applyFile(path, matchers)
		if err != nil {
			e.logger.Error("substitution failed", e.logger.Args("file", path, "error", err))
			errs = append(errs, err)
			continue
		}
		result.Files = append(result.Files, fr)
		if fr.Written {
			result.FilesChanged++
			result.Replacements += fr.Replacements
			e.logger.Debug("rewrote file", e.logger.Args("file", path, "replacements", fr.Replacements))
		}
	}

	return result, errors.Join(errs...)
}

func (e *Engine) applyFile(path string, matchers []*matcher) (FileResult, error) {
	fr := FileResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return fr, &SubstitutionIOError{Path: path, Op: "read", Err: err}
	}

	before := string(data)
	after, n := rewrite(before, matchers)
	fr.Replacements = n
	if n == 0 || after == before {
		return fr, nil
	}

	if err := utils.WriteFileAtomic(path, []byte(after), 0o644); err != nil {
		return fr, &SubstitutionIOError{Path: path, Op: "write", Err: err}
	}
	fr.Written = true
	return fr, nil
}

// Preview computes the rewrite of every file without writing. Only changed files are returned.
func (e *Engine) Preview(files []string, renames []models.Rename) ([]FileChange, error) {
	matchers := compile(renames)
	var changes []FileChange
	var errs []error

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, &SubstitutionIOError{Path: path, Op: "read", Err: err})
			continue
		}
		before := string(data)
		after, n := rewrite(before, matchers)
		if n == 0 || after == before {
			continue
		}
		changes = append(changes, FileChange{Path: path, Before: before, After: after, Replacements: n})
	}

	return changes, errors.Join(errs...)
}
