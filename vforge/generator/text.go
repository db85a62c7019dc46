package generator

import (
	"fmt"

	"github.com/ZanzyTHEbar/value-forge/vforge/catalog"
	"github.com/ZanzyTHEbar/value-forge/vforge/codepoint"
	"github.com/ZanzyTHEbar/value-forge/vforge/randsource"
)

// genText picks a script, a target length, then codepoints one at a time.
// A nonspacing mark drawn in first position is discarded without counting
// toward the length; a string may not begin with a bare combining diacritic.
func (g *Generator) genText(depth uint32) (any, error) {
	script, err := randsource.PickFrom(g.draws, g.config.AllowedScripts, ReasonTextScript)
	if err != nil {
		return nil, fmt.Errorf("failed to pick a text script: %w", err)
	}
	infos, err := g.catalog.Get(script, catalog.All())
	if err != nil {
		return nil, fmt.Errorf("failed to list codepoints for script %q: %w", script, err)
	}
	length, err := g.draws.UniformIndex(g.config.MaxStringLength, ReasonTextLength)
	if err != nil {
		return nil, fmt.Errorf("failed to draw text length: %w", err)
	}
	if length == 0 {
		return "", nil
	}
	if !hasLeadCandidate(infos) {
		return nil, fmt.Errorf("script %q has no codepoint usable in first position", script)
	}
	runes := make([]rune, 0, length)
	for uint32(len(runes)) < length {
		info, err := randsource.PickFrom(g.draws, infos, ReasonTextRune)
		if err != nil {
			return nil, fmt.Errorf("failed to pick a text codepoint: %w", err)
		}
		if len(runes) == 0 && info.Category == codepoint.CategoryNonspacingMark {
			continue
		}
		runes = append(runes, info.Code)
	}
	return string(runes), nil
}

// hasLeadCandidate reports whether at least one codepoint could open the
// string. Without one the redraw loop above would never terminate.
func hasLeadCandidate(infos []codepoint.CodepointInfo) bool {
	for _, info := range infos {
		if info.Category != codepoint.CategoryNonspacingMark {
			return true
		}
	}
	return false
}
