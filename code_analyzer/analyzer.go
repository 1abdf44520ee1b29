package code_analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pterm/pterm"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/akss-tools/namefix/code_analyzer/contracts"
	"github.com/akss-tools/namefix/code_analyzer/models"
	"github.com/akss-tools/namefix/embed_data"
	"github.com/akss-tools/namefix/utils"
)

// SourceExtensions are the file extensions considered part of a project.
var SourceExtensions = []string{".c", ".cpp", ".h", ".hpp"}

// DiscoveryError reports a file whose declarations could not be collected.
type DiscoveryError struct {
	File string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery failed for %s: %v", e.File, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// ErrSyntax is wrapped by a DiscoveryError when the parse tree contains errors.
var ErrSyntax = errors.New("source contains syntax errors")

// Options controls discovery.
type Options struct {
	// TolerateSyntaxErrors keeps the declarations of files that do not parse cleanly.
	TolerateSyntaxErrors bool
	RespectGitignore     bool
	EnableCache          bool
	// CacheDir defaults to <cwd>/.namefix_cache.
	CacheDir string
}

// CodeAnalyzer walks C and C++ sources with tree-sitter and reports declared names.
type CodeAnalyzer struct {
	options      Options
	cacheManager *CacheManager
	logger       *pterm.Logger
}

// grammar is a parsed-on-demand tree-sitter language with its compiled declaration query.
type grammar struct {
	name   string
	lang   *sitter.Language
	source []byte

	once  sync.Once
	query *sitter.Query
	err   error
}

func (g *grammar) compiled() (*sitter.Query, error) {
	g.once.Do(func() {
		g.query, g.err = sitter.NewQuery(g.source, g.lang)
		if g.err != nil {
			g.err = fmt.Errorf("failed to compile %s query: %w", g.name, g.err)
		}
	})
	return g.query, g.err
}

var (
	cppGrammar = &grammar{name: "cpp", lang: cpp.GetLanguage(), source: embed_data.CppQuery}
	cGrammar   = &grammar{name: "c", lang: c.GetLanguage(), source: embed_data.CQuery}
)

func grammarFor(filePath string) *grammar {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".c":
		return cGrammar
	case ".cpp", ".cc", ".cxx", ".h", ".hpp", ".hh":
		return cppGrammar
	}
	return nil
}

// NewCodeAnalyzer initializes a new CodeAnalyzer. A cache that cannot be opened is
// reported and discovery runs uncached.
func NewCodeAnalyzer(options Options, logger *pterm.Logger) contracts.ICodeAnalyzer {
	if logger == nil {
		logger = pterm.DefaultLogger.WithWriter(io.Discard)
	}

	var cacheManager *CacheManager
	if options.EnableCache {
		var err error
		cacheManager, err = NewCacheManager(options.CacheDir)
		if err != nil {
			logger.Warn("discovery cache disabled", logger.Args("error", err))
			cacheManager = nil
		}
	}

	return &CodeAnalyzer{
		options:      options,
		cacheManager: cacheManager,
		logger:       logger,
	}
}

// GetProjectFiles lists the C/C++ files directly inside sourceDir and includeDir.
// Source files come first, then include files, each sorted by name; a file reachable from
// both directories is listed once.
func (analyzer *CodeAnalyzer) GetProjectFiles(sourceDir, includeDir string) (*models.ProjectFileSet, error) {
	result := &models.ProjectFileSet{SourceDir: sourceDir, IncludeDir: includeDir}
	seen := make(map[string]struct{})

	for _, dir := range []string{sourceDir, includeDir} {
		if dir == "" {
			continue
		}
		files, err := analyzer.listDir(dir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			abs, err := filepath.Abs(f)
			if err != nil {
				abs = filepath.Clean(f)
			}
			if _, ok := seen[abs]; ok {
				continue
			}
			seen[abs] = struct{}{}
			result.Files = append(result.Files, f)
		}
	}

	return result, nil
}

func (analyzer *CodeAnalyzer) listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var matcher *utils.IgnoreMatcher
	if analyzer.options.RespectGitignore {
		matcher, err = utils.LoadGitignore(dir)
		if err != nil {
			return nil, err
		}
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || utils.IsDefaultIgnored(name) {
			continue
		}
		if !hasSourceExtension(name) {
			continue
		}
		if matcher.Matches(name) {
			analyzer.logger.Trace("ignored by .gitignore", analyzer.logger.Args("file", name))
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func hasSourceExtension(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range SourceExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Discover collects the declarations of every file in order. Failures are returned per file
// as *DiscoveryError and never stop the scan. Tree-sitter does not preprocess, so includeArgs
// only distinguish cache entries.
func (analyzer *CodeAnalyzer) Discover(ctx context.Context, files *models.ProjectFileSet, includeArgs []string) ([]models.Occurrence, []error) {
	if files == nil {
		return nil, nil
	}

	var occurrences []models.Occurrence
	var errs []error
	variant := analyzer.cacheVariant(includeArgs)

	for _, path := range files.Files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if analyzer.cacheManager != nil {
			if cached, found := analyzer.cacheManager.GetDiscoveryCache(path, variant); found {
				occurrences = append(occurrences, cached...)
				continue
			}
		}

		source, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, &DiscoveryError{File: path, Err: err})
			continue
		}

		found, err := analyzer.ProcessFile(path, source)
		if err != nil {
			analyzer.logger.Warn("skipping file", analyzer.logger.Args("file", path, "error", err))
			errs = append(errs, err)
			if found == nil {
				continue
			}
		}

		if analyzer.cacheManager != nil && err == nil {
			if err := analyzer.cacheManager.SetDiscoveryCache(path, variant, found); err != nil {
				analyzer.logger.Debug("failed to cache discovery result", analyzer.logger.Args("file", path, "error", err))
			}
		}
		occurrences = append(occurrences, found...)
	}

	if analyzer.cacheManager != nil {
		stats := analyzer.cacheManager.GetPerformanceStats()
		analyzer.logger.Debug("discovery cache", analyzer.logger.Args("hits", stats.CacheHits, "misses", stats.CacheMisses, "hit_rate", fmt.Sprintf("%.1f%%", stats.HitRate())))
	}

	return occurrences, errs
}

func (analyzer *CodeAnalyzer) cacheVariant(includeArgs []string) string {
	return fmt.Sprintf("tolerant=%t|%s", analyzer.options.TolerateSyntaxErrors, strings.Join(includeArgs, " "))
}

// ProcessFile parses one file and returns its declarations ordered by position.
// A tree with syntax errors yields a *DiscoveryError wrapping ErrSyntax; the declarations
// are dropped unless syntax errors are tolerated, in which case they are returned with it.
func (analyzer *CodeAnalyzer) ProcessFile(filePath string, sourceCode []byte) ([]models.Occurrence, error) {
	g := grammarFor(filePath)
	if g == nil {
		return nil, &DiscoveryError{File: filePath, Err: fmt.Errorf("unsupported file type %q", filepath.Ext(filePath))}
	}
	query, err := g.compiled()
	if err != nil {
		return nil, &DiscoveryError{File: filePath, Err: err}
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g.lang)

	tree, err := parser.ParseCtx(context.Background(), nil, sourceCode)
	if err != nil {
		return nil, &DiscoveryError{File: filePath, Err: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	var syntaxErr error
	if root.HasError() {
		syntaxErr = &DiscoveryError{File: filePath, Err: ErrSyntax}
		if !analyzer.options.TolerateSyntaxErrors {
			return nil, syntaxErr
		}
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, root)

	type positioned struct {
		models.Occurrence
		col uint32
	}
	var found []positioned

	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			kind, name, ok := classify(query.CaptureNameForId(capture.Index), capture.Node)
			if !ok {
				continue
			}
			found = append(found, positioned{
				Occurrence: models.Occurrence{
					Spelling: name.Content(sourceCode),
					Kind:     kind,
					File:     filePath,
					Line:     int(name.StartPoint().Row) + 1,
				},
				col: name.StartPoint().Column,
			})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Line != found[j].Line {
			return found[i].Line < found[j].Line
		}
		return found[i].col < found[j].col
	})

	occurrences := make([]models.Occurrence, 0, len(found))
	for _, f := range found {
		occurrences = append(occurrences, f.Occurrence)
	}
	return occurrences, syntaxErr
}

// classify maps a query capture to a symbol kind and the node holding its name.
func classify(captureName string, node *sitter.Node) (models.SymbolKind, *sitter.Node, bool) {
	switch captureName {
	case "class":
		if node.Type() != "type_identifier" {
			return 0, nil, false
		}
		return models.Class, node, true
	case "function":
		name, isFunc := declaredName(node)
		if name == nil || !isFunc {
			return 0, nil, false
		}
		return models.Function, name, true
	case "declaration":
		name, isFunc := declaredName(node)
		if name == nil {
			return 0, nil, false
		}
		if isFunc {
			return models.Function, name, true
		}
		return models.Variable, name, true
	}
	return 0, nil, false
}

// declaredName unwraps a declarator down to its identifier. isFunc reports whether the
// outermost applied declarator is a function declarator; "int (*fp)(int)" is a variable.
// Methods, qualified names, operators and destructors yield nil.
func declaredName(node *sitter.Node) (*sitter.Node, bool) {
	isFunc := false
	for node != nil {
		switch node.Type() {
		case "identifier":
			return node, isFunc
		case "function_declarator":
			isFunc = true
		case "parenthesized_declarator":
			isFunc = false
		case "init_declarator", "pointer_declarator", "reference_declarator", "array_declarator":
		default:
			return nil, false
		}
		node = innerDeclarator(node)
	}
	return nil, false
}

func innerDeclarator(node *sitter.Node) *sitter.Node {
	if d := node.ChildByFieldName("declarator"); d != nil {
		return d
	}
	if n := int(node.NamedChildCount()); n > 0 {
		return node.NamedChild(n - 1)
	}
	return nil
}
