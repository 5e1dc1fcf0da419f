package kodx

import (
	"context"
	"hash/fnv"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pipeline composes locator, call-site extraction, and resolver per cursor
// event. Each run recomputes everything from current document state; the
// only cross-run state is the last resolved scope identity, kept purely to
// skip recomputation while the cursor stays inside an unchanged scope.
type Pipeline struct {
	locator  *ScopeLocator
	resolver *DefinitionResolver
	logger   *slog.Logger

	mu      sync.Mutex
	seq     uint64
	lastSeq uint64
	lastKey scopeKey
	last    *Result
}

// scopeKey identifies a resolved scope: same document, same range, same
// name, same scope text. Any change invalidates the memo.
type scopeKey struct {
	uri  string
	rng  Range
	name string
	hash uint64
}

// Result is one pipeline run's output. Definitions are ordered by the first
// occurrence of their call site, never by resolution completion order.
type Result struct {
	Scope       EnclosingScope
	CallSites   []CallSite
	Definitions []Definition
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets the logger used for tier-fallback diagnostics.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline wires a Pipeline from the three host collaborators.
func NewPipeline(outline OutlineProvider, symbols SymbolSearcher, source DocumentSource, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	p.locator = NewScopeLocator(outline, p.logger)
	p.resolver = NewDefinitionResolver(symbols, source, p.logger)
	return p
}

// Run executes one pipeline pass for the cursor position. A nil result
// means nothing to show: the cursor is not inside a function-like scope.
// Failures of individual lookups are local: one unresolvable call site
// never aborts its siblings.
func (p *Pipeline) Run(ctx context.Context, doc Document, pos Position) *Result {
	seq := p.nextSeq()

	scope := p.locator.Locate(ctx, doc, pos)
	if scope == nil {
		return nil
	}

	key := scopeKey{
		uri:  doc.URI(),
		rng:  scope.Range,
		name: scope.Name,
		hash: hashRange(doc, scope.Range),
	}
	p.mu.Lock()
	if p.last != nil && key == p.lastKey {
		res := p.last
		p.mu.Unlock()
		return res
	}
	p.mu.Unlock()

	calls := CallSites(doc, scope)
	defs := p.resolveAll(ctx, doc, calls)

	res := &Result{Scope: *scope, CallSites: calls, Definitions: defs}
	p.publish(seq, key, res)
	return res
}

// Latest returns the most recently published result, or nil. Because
// publication is sequence-gated, a stale in-flight run can never replace a
// newer result here.
func (p *Pipeline) Latest() *Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// resolveAll fans out one resolver call per distinct call site and joins.
// Workers write into their own slot, so no lock is needed; ordering is the
// call-site order, not completion order.
func (p *Pipeline) resolveAll(ctx context.Context, doc Document, calls []CallSite) []Definition {
	resolved := make([]*Definition, len(calls))
	g, ctx := errgroup.WithContext(ctx)
	for i, cs := range calls {
		g.Go(func() error {
			resolved[i] = p.resolver.Resolve(ctx, cs.Name, doc)
			return nil
		})
	}
	// Workers never return errors: a failed lookup is a nil slot, not a
	// reason to cancel siblings.
	_ = g.Wait()

	defs := make([]Definition, 0, len(calls))
	for _, d := range resolved {
		if d != nil {
			defs = append(defs, *d)
		}
	}
	return defs
}

func (p *Pipeline) nextSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	return p.seq
}

// publish stores res as the latest result unless a newer run already
// published (last-write-wins by sequence, not by completion time).
func (p *Pipeline) publish(seq uint64, key scopeKey, res *Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq < p.lastSeq {
		return
	}
	p.lastSeq = seq
	p.lastKey = key
	p.last = res
}

// hashRange hashes the text covered by r, the cheap identity check for the
// scope memo.
func hashRange(doc Document, r Range) uint64 {
	start := doc.OffsetAt(r.Start)
	end := doc.OffsetAt(r.End)
	h := fnv.New64a()
	_, _ = io.WriteString(h, doc.Text()[start:end])
	return h.Sum64()
}
