package kodx

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/fulopmarton/kodx/internal/index"
	"github.com/fulopmarton/kodx/internal/outline"
	"github.com/fulopmarton/kodx/internal/text"
)

// sourceTTL bounds how long a document read stays cached between pipeline
// runs; an edited file is re-read after at most this long.
const sourceTTL = 30 * time.Second

// Engine owns the symbol index and document source: file discovery, change
// detection, tree-sitter extraction, and pipeline wiring.
type Engine struct {
	store     *index.Store
	source    *text.Source
	logger    *slog.Logger
	languages map[string]bool // nil means all languages

	// useParallel enables the worker-pool extraction path.
	useParallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguages restricts which languages the Engine will index.
func WithLanguages(languages ...string) Option {
	return func(e *Engine) {
		e.languages = make(map[string]bool, len(languages))
		for _, lang := range languages {
			e.languages[lang] = true
		}
	}
}

// WithParallel controls parallel extraction. When true (default), IndexFiles
// parses files on a worker pool and commits symbol rows serially. Set to
// false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithLogger sets the Engine's logger, also passed to pipelines it creates.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine backed by a SQLite database at dbPath.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := index.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("kodx: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("kodx: migrate: %w", err)
	}
	e := &Engine{
		store:       s,
		source:      text.NewSource(sourceTTL),
		useParallel: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying symbol index for direct access.
func (e *Engine) Store() *index.Store {
	return e.store
}

// Pipeline returns a Pipeline backed by the Engine's index and file source.
func (e *Engine) Pipeline() *Pipeline {
	provider := &indexProvider{store: e.store}
	return NewPipeline(provider, provider, fileSource{src: e.source},
		WithPipelineLogger(e.logger))
}

// OpenDocument opens a document through the Engine's cached source.
func (e *Engine) OpenDocument(ctx context.Context, uri string) (Document, error) {
	return fileSource{src: e.source}.Open(ctx, uri)
}

// skipDirs are directories excluded from the plain-walk fallback.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
}

// IndexDirectory walks root and indexes all files with supported extensions.
// When root is inside a git repository the walk honors .gitignore patterns;
// otherwise hidden directories, node_modules, vendor, and dist are skipped.
func (e *Engine) IndexDirectory(ctx context.Context, root string) error {
	paths, err := e.listFiles(root)
	if err != nil {
		return err
	}
	return e.IndexFiles(ctx, paths)
}

// IndexFiles indexes the given file paths. Unsupported and unchanged files
// are skipped; errors on individual files are collected and reported once
// processing finishes.
func (e *Engine) IndexFiles(ctx context.Context, paths []string) error {
	if e.useParallel {
		return e.indexFilesParallel(ctx, paths)
	}
	var errs []error
	for _, path := range paths {
		if err := e.indexFile(ctx, path); err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", path, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("indexing had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}

func (e *Engine) indexFile(ctx context.Context, path string) error {
	item, skip, err := e.prepareFile(path)
	if err != nil {
		return err
	}
	if skip {
		return nil
	}
	symbols, err := outline.Parse(ctx, item.content, item.lang)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	return e.commitSymbols(item.fileID, symbols, nil)
}

// workItem carries one file through the prepare/extract/commit phases.
type workItem struct {
	path    string
	lang    string
	fileID  int64
	content []byte
	symbols []*outline.Symbol
}

// prepareFile does the serial phase for one file: language detection, hash
// check, stale-row cleanup, file record insertion. skip=true means the file
// is unsupported, filtered out, or unchanged.
func (e *Engine) prepareFile(path string) (workItem, bool, error) {
	lang, ok := outline.LanguageForFile(path)
	if !ok {
		return workItem{}, true, nil
	}
	if e.languages != nil && !e.languages[lang] {
		return workItem{}, true, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return workItem{}, false, fmt.Errorf("read file: %w", err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	existing, err := e.store.FileByPath(path)
	if err != nil {
		return workItem{}, false, fmt.Errorf("lookup file: %w", err)
	}
	if existing != nil && existing.Hash == hash {
		return workItem{}, true, nil // unchanged
	}
	if existing != nil {
		if err := e.store.DeleteFileData(existing.ID); err != nil {
			return workItem{}, false, fmt.Errorf("delete old data: %w", err)
		}
	}

	fileID, err := e.store.InsertFile(&index.File{
		Path:        path,
		Language:    lang,
		Hash:        hash,
		LineCount:   strings.Count(string(content), "\n") + 1,
		LastIndexed: time.Now(),
	})
	if err != nil {
		return workItem{}, false, fmt.Errorf("insert file: %w", err)
	}
	e.source.Invalidate(path)

	return workItem{path: path, lang: lang, fileID: fileID, content: content}, false, nil
}

// commitSymbols writes a symbol tree depth-first, parents before children,
// so ascending rowid order matches top-to-bottom declaration order, the
// order SymbolsByName documents as its tie-break.
func (e *Engine) commitSymbols(fileID int64, symbols []*outline.Symbol, parentID *int64) error {
	for _, sym := range symbols {
		id, err := e.store.InsertSymbol(&index.Symbol{
			FileID:         fileID,
			Name:           sym.Name,
			Kind:           sym.Kind,
			StartLine:      sym.Range.Start.Line,
			StartCol:       sym.Range.Start.Column,
			EndLine:        sym.Range.End.Line,
			EndCol:         sym.Range.End.Column,
			ParentSymbolID: parentID,
		})
		if err != nil {
			return fmt.Errorf("insert symbol %s: %w", sym.Name, err)
		}
		if err := e.commitSymbols(fileID, sym.Children, &id); err != nil {
			return err
		}
	}
	return nil
}

// indexFilesParallel runs three phases: serial prepare (hash check, row
// cleanup), parallel tree-sitter extraction on a worker pool, and serial
// commit so SQLite sees a single writer and rowids stay in discovery order.
func (e *Engine) indexFilesParallel(ctx context.Context, paths []string) error {
	var items []workItem
	for _, path := range paths {
		item, skip, err := e.prepareFile(path)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", path, err)
		}
		if skip {
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil
	}

	numWorkers := min(runtime.NumCPU(), len(items))
	workCh := make(chan int, len(items))
	for i := range items {
		workCh <- i
	}
	close(workCh)

	errCh := make(chan error, len(items))
	done := make(chan struct{})
	for range numWorkers {
		go func() {
			for i := range workCh {
				// Each worker builds its own parser, so tree-sitter
				// parsing stays goroutine-safe.
				symbols, err := outline.Parse(ctx, items[i].content, items[i].lang)
				if err != nil {
					errCh <- fmt.Errorf("extract %s: %w", items[i].path, err)
					continue
				}
				items[i].symbols = symbols
			}
			done <- struct{}{}
		}()
	}
	for range numWorkers {
		<-done
	}
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	for _, item := range items {
		if item.symbols == nil {
			continue // extraction failed, already recorded
		}
		if err := e.commitSymbols(item.fileID, item.symbols, nil); err != nil {
			errs = append(errs, fmt.Errorf("commit %s: %w", item.path, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("parallel indexing had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}

// listFiles discovers indexable files under root. Inside a git repository
// the walk consults the repository's gitignore patterns; elsewhere it skips
// hidden directories and the usual dependency/output directories.
func (e *Engine) listFiles(root string) ([]string, error) {
	matcher, repoRoot := e.ignoreMatcher(root)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if name == ".git" {
				return filepath.SkipDir
			}
			if matcher != nil {
				if matcher.Match(splitRel(repoRoot, path), true) {
					return filepath.SkipDir
				}
				return nil
			}
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher != nil && matcher.Match(splitRel(repoRoot, path), false) {
			return nil
		}
		if _, ok := outline.LanguageForFile(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}

// ignoreMatcher builds a gitignore matcher for the repository containing
// root, if any. Returns (nil, "") when root is not inside a git worktree.
func (e *Engine) ignoreMatcher(root string) (gitignore.Matcher, string) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, ""
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, ""
	}
	patterns, err := gitignore.ReadPatterns(wt.Filesystem, nil)
	if err != nil {
		e.logger.Debug("reading gitignore patterns", "error", err)
		return nil, ""
	}
	return gitignore.NewMatcher(patterns), wt.Filesystem.Root()
}

// splitRel converts path into the slash-separated segments relative to base
// that gitignore matchers expect.
func splitRel(base, path string) []string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return nil
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}
