package generator

import (
	"errors"
	"fmt"
)

// Container rules draw a size, then generate that many children at the depth
// they were handed. A child that comes back depth-exhausted is simply not
// added, so containers at the recursion ceiling collapse to empty ones after
// only the kind and size draws.

func (g *Generator) genList(depth uint32) (any, error) {
	size, err := g.draws.UniformIndex(g.config.MaxContainerSize, ReasonListSize)
	if err != nil {
		return nil, fmt.Errorf("failed to draw list size: %w", err)
	}
	out := make([]any, 0, size)
	for i := uint32(0); i < size; i++ {
		v, err := g.Generate(depth)
		if errors.Is(err, ErrDepthExhausted) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// genMap draws two values per entry, key first. Keys are rendered to strings
// the way fmt prints them; a later entry whose key renders identically
// overwrites the earlier one.
func (g *Generator) genMap(depth uint32) (any, error) {
	size, err := g.draws.UniformIndex(g.config.MaxContainerSize, ReasonMapSize)
	if err != nil {
		return nil, fmt.Errorf("failed to draw map size: %w", err)
	}
	out := make(map[string]any, size)
	for i := uint32(0); i < size; i++ {
		key, err := g.Generate(depth)
		if errors.Is(err, ErrDepthExhausted) {
			continue
		}
		if err != nil {
			return nil, err
		}
		val, err := g.Generate(depth)
		if errors.Is(err, ErrDepthExhausted) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[fmt.Sprint(key)] = val
	}
	return out, nil
}

// genSet keeps first occurrences in insertion order, deduplicating on the
// rendered form of each element.
func (g *Generator) genSet(depth uint32) (any, error) {
	size, err := g.draws.UniformIndex(g.config.MaxContainerSize, ReasonSetSize)
	if err != nil {
		return nil, fmt.Errorf("failed to draw set size: %w", err)
	}
	out := make([]any, 0, size)
	seen := make(map[string]struct{}, size)
	for i := uint32(0); i < size; i++ {
		v, err := g.Generate(depth)
		if errors.Is(err, ErrDepthExhausted) {
			continue
		}
		if err != nil {
			return nil, err
		}
		k := fmt.Sprint(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}
