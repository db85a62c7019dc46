package generator

import (
	"fmt"
	"sort"
)

// GenerateFunc produces one value of a single kind. Implementations draw
// through the generator's source and recurse via Generate at the depth they
// are handed.
type GenerateFunc func(g *Generator, depth uint32) (any, error)

// Registry is the immutable kind table a generator dispatches through. The
// kind order is fixed at build time; the uniform kind pick indexes into it,
// so two registries with the same kinds in the same order replay each
// other's traces.
type Registry struct {
	kinds []Kind
	funcs map[Kind]GenerateFunc
}

// Kinds returns the pickable kinds in registry order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, len(r.kinds))
	copy(out, r.kinds)
	return out
}

// Lookup returns the rule registered for kind.
func (r *Registry) Lookup(kind Kind) (GenerateFunc, bool) {
	fn, ok := r.funcs[kind]
	return fn, ok
}

func defaultRules() map[Kind]GenerateFunc {
	return map[Kind]GenerateFunc{
		KindNull:     (*Generator).genNull,
		KindBoolean:  (*Generator).genBoolean,
		KindInteger:  (*Generator).genInteger,
		KindFloat:    (*Generator).genFloat,
		KindGaussian: (*Generator).genGaussian,
		KindBytes:    (*Generator).genBytes,
		KindText:     (*Generator).genText,
		KindList:     (*Generator).genList,
		KindMap:      (*Generator).genMap,
		KindSet:      (*Generator).genSet,
		KindHostname: (*Generator).genHostname,
	}
}

// defaultKindOrder fixes the dispatch order of the built-in kinds.
var defaultKindOrder = []Kind{
	KindNull,
	KindBoolean,
	KindInteger,
	KindFloat,
	KindGaussian,
	KindBytes,
	KindText,
	KindList,
	KindMap,
	KindSet,
	KindHostname,
}

// RegistryBuilder assembles a registry from the built-in rules plus caller
// overrides. Custom kinds append after the built-ins in the order they were
// added.
type RegistryBuilder struct {
	kinds []Kind
	funcs map[Kind]GenerateFunc
	err   error
}

// NewRegistryBuilder starts from the full built-in kind table.
func NewRegistryBuilder() *RegistryBuilder {
	b := &RegistryBuilder{
		kinds: make([]Kind, len(defaultKindOrder)),
		funcs: defaultRules(),
	}
	copy(b.kinds, defaultKindOrder)
	return b
}

// Override replaces the rule for an existing kind, or appends a new kind at
// the end of the pick order.
func (b *RegistryBuilder) Override(kind Kind, fn GenerateFunc) *RegistryBuilder {
	if b.err != nil {
		return b
	}
	if kind == "" {
		b.err = fmt.Errorf("kind name cannot be empty")
		return b
	}
	if fn == nil {
		b.err = fmt.Errorf("rule for kind %q cannot be nil", kind)
		return b
	}
	if _, exists := b.funcs[kind]; !exists {
		b.kinds = append(b.kinds, kind)
	}
	b.funcs[kind] = fn
	return b
}

// Remove drops a kind from the pick order. Removing an unknown kind is an
// error so a misspelled exclusion does not silently keep the kind in play.
func (b *RegistryBuilder) Remove(kind Kind) *RegistryBuilder {
	if b.err != nil {
		return b
	}
	if _, exists := b.funcs[kind]; !exists {
		b.err = fmt.Errorf("cannot remove unknown kind %q", kind)
		return b
	}
	delete(b.funcs, kind)
	for i, k := range b.kinds {
		if k == kind {
			b.kinds = append(b.kinds[:i], b.kinds[i+1:]...)
			break
		}
	}
	return b
}

// Build finalizes the registry.
func (b *RegistryBuilder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.kinds) == 0 {
		return nil, fmt.Errorf("registry needs at least one kind")
	}
	r := &Registry{
		kinds: make([]Kind, len(b.kinds)),
		funcs: make(map[Kind]GenerateFunc, len(b.funcs)),
	}
	copy(r.kinds, b.kinds)
	for k, fn := range b.funcs {
		r.funcs[k] = fn
	}
	return r, nil
}

// kindNames renders a kind list for error messages.
func kindNames(kinds []Kind) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	sort.Strings(names)
	return names
}
