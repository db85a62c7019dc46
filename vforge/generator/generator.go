package generator

import (
	"errors"
	"fmt"
	"log/slog"

	assert "github.com/ZanzyTHEbar/assert-lib"

	"github.com/ZanzyTHEbar/value-forge/vforge/catalog"
	"github.com/ZanzyTHEbar/value-forge/vforge/codepoint"
	"github.com/ZanzyTHEbar/value-forge/vforge/ports"
	"github.com/ZanzyTHEbar/value-forge/vforge/randsource"
)

// ErrDepthExhausted reports that a Generate call sits past the configured
// recursion ceiling. Container rules treat it as "produce no child" rather
// than a failure; it only escapes to the caller when the very first call is
// already too deep.
var ErrDepthExhausted = errors.New("generation depth exhausted")

// GeneratorStats counts produced values, including nested ones.
type GeneratorStats struct {
	Generated uint64
	ByKind    map[Kind]uint64
}

// Generator produces random values by walking a kind registry with draws
// from a single source. It is not safe for concurrent use: draws must land
// in one deterministic order for traces to replay. GenerateBatch hands each
// worker its own Generator instead.
type Generator struct {
	config        Config
	draws         *randsource.Draws
	catalog       *catalog.Catalog
	registry      *Registry
	AssertHandler *assert.AssertHandler
	stats         GeneratorStats
}

// New builds a generator with the default kind registry minus the config's
// exclusions. A nil source defaults to fresh cryptographic randomness.
func New(cfg Config, src randsource.Source, cat *catalog.Catalog) (*Generator, error) {
	b := NewRegistryBuilder()
	for _, name := range cfg.ExcludedKinds {
		b.Remove(Kind(name))
	}
	reg, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build kind registry: %w", err)
	}
	return NewWithRegistry(cfg, src, cat, reg)
}

// NewWithRegistry builds a generator around a caller-assembled registry.
// The config's ExcludedKinds are ignored here; the registry is taken as-is.
func NewWithRegistry(cfg Config, src randsource.Source, cat *catalog.Catalog, reg *Registry) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate generator config: %w", err)
	}
	if cat == nil {
		return nil, errors.New("a codepoint catalog is required")
	}
	if reg == nil || len(reg.kinds) == 0 {
		return nil, errors.New("a registry with at least one kind is required")
	}
	ix := cat.Index()
	for _, name := range cfg.AllowedScripts {
		sr, ok := ix.Script(name)
		if !ok || sr.Count == 0 {
			return nil, fmt.Errorf("allowed script %q: %w", name, catalog.ErrUnknownScript)
		}
	}
	if src == nil {
		src = randsource.NewGenerative()
	}
	g := &Generator{
		config:        cfg,
		draws:         randsource.NewDraws(src),
		catalog:       cat,
		registry:      reg,
		AssertHandler: assert.NewAssertHandler(),
	}
	g.stats.ByKind = make(map[Kind]uint64)
	slog.Debug("generator ready",
		"component", "generator",
		"kinds", kindNames(reg.kinds),
		"scripts", cfg.AllowedScripts,
		"max_depth", cfg.MaxDepth)
	return g, nil
}

// Generate produces one value rooted at the given depth. Passing 0 starts a
// fresh tree; nested rules pass the depth they were handed. Values deeper
// than MaxDepth are not produced: the call returns ErrDepthExhausted without
// touching the draw source, which container rules translate into an empty
// container.
func (g *Generator) Generate(depth uint32) (any, error) {
	if depth > g.config.MaxDepth {
		return nil, ErrDepthExhausted
	}
	kind, err := randsource.PickFrom(g.draws, g.registry.kinds, ReasonKind)
	if err != nil {
		return nil, fmt.Errorf("failed to pick a kind: %w", err)
	}
	fn, ok := g.registry.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("no rule registered for kind %q", kind)
	}
	v, err := fn(g, depth+1)
	if err != nil {
		return nil, err
	}
	g.stats.Generated++
	g.stats.ByKind[kind]++
	return v, nil
}

// Config returns the bounds this generator runs under.
func (g *Generator) Config() Config {
	return g.config
}

// Catalog returns the script catalog backing text generation.
func (g *Generator) Catalog() *catalog.Catalog {
	return g.catalog
}

// Registry returns the kind table this generator dispatches through.
func (g *Generator) Registry() *Registry {
	return g.registry
}

// GetStats returns a copy of the current counters.
func (g *Generator) GetStats() GeneratorStats {
	out := GeneratorStats{
		Generated: g.stats.Generated,
		ByKind:    make(map[Kind]uint64, len(g.stats.ByKind)),
	}
	for k, n := range g.stats.ByKind {
		out.ByKind[k] = n
	}
	return out
}

// DrawBytes pulls length tagged bytes from the underlying source.
func (g *Generator) DrawBytes(length int, reason string) ([]byte, error) {
	return g.draws.Draw(length, reason)
}

// DrawCodepoint picks one codepoint uniformly from a script's filtered list.
func (g *Generator) DrawCodepoint(script string, filter catalog.Filter) (codepoint.CodepointInfo, error) {
	infos, err := g.catalog.Get(script, filter)
	if err != nil {
		return codepoint.CodepointInfo{}, err
	}
	return randsource.PickFrom(g.draws, infos, ReasonCodepoint)
}

// PickScript picks one of the allowed scripts uniformly.
func (g *Generator) PickScript() (string, error) {
	return randsource.PickFrom(g.draws, g.config.AllowedScripts, ReasonScript)
}

// Source exposes the current draw source.
func (g *Generator) Source() randsource.Source {
	return g.draws.Source()
}

// SetSource swaps the draw source, e.g. from a recording to a replaying one.
func (g *Generator) SetSource(src randsource.Source) {
	g.draws.SetSource(src)
}

var _ ports.Collaborator = (*Generator)(nil)
