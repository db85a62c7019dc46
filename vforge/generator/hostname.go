package generator

import (
	"fmt"

	"github.com/ZanzyTHEbar/value-forge/vforge/catalog"
	"github.com/ZanzyTHEbar/value-forge/vforge/randsource"
)

// hostnameSchemes is the fixed protocol enumeration for generated URLs.
var hostnameSchemes = []string{"http", "https"}

// referenceTLDs is a small slice of the public root zone, including
// internationalized entries so label generation exercises non-Latin scripts.
var referenceTLDs = []string{
	"com", "net", "org", "io", "dev", "info", "biz", "co", "app", "museum",
	"рф",       // Cyrillic
	"укр",      // Cyrillic
	"中国",       // Han
	"中文网",      // Han
	"ελ",       // Greek
	"السعودية", // Arabic
	"مصر",      // Arabic
}

// Label category sets. The first codepoint comes from lowercase or uncased
// letters only; later codepoints may also be uppercase, marks, or digits.
// Lo covers scripts such as Han and Arabic that have no Ll codepoints.
var (
	labelFirstCategories = []string{"Ll", "Lo"}
	labelBodyCategories  = []string{"Ll", "Lm", "Lo", "Lt", "Lu", "Mc", "Me", "Mn", "Nd"}
)

// genHostname assembles scheme://label.tld. The label's script is inferred
// from the picked top-level label rather than chosen from AllowedScripts, so
// a Cyrillic tld gets a Cyrillic label.
func (g *Generator) genHostname(depth uint32) (any, error) {
	scheme, err := randsource.PickFrom(g.draws, hostnameSchemes, ReasonHostScheme)
	if err != nil {
		return nil, fmt.Errorf("failed to pick a hostname scheme: %w", err)
	}
	tld, err := randsource.PickFrom(g.draws, referenceTLDs, ReasonHostTLD)
	if err != nil {
		return nil, fmt.Errorf("failed to pick a top-level label: %w", err)
	}
	script, err := g.inferScript(tld)
	if err != nil {
		return nil, err
	}
	label, err := g.genLabel(script)
	if err != nil {
		return nil, err
	}
	return scheme + "://" + label + "." + tld, nil
}

// inferScript classifies the first codepoint of the top-level label.
func (g *Generator) inferScript(tld string) (string, error) {
	for _, r := range tld {
		info, err := g.catalog.Index().Lookup(r)
		if err != nil {
			return "", fmt.Errorf("failed to infer script for %q: %w", tld, err)
		}
		if info == nil {
			return "", fmt.Errorf("failed to infer script for %q: codepoint %#U is not indexed", tld, r)
		}
		return info.Script, nil
	}
	return "", fmt.Errorf("failed to infer script for an empty top-level label")
}

// genLabel draws a length in [1, MaxStringLength), a first codepoint from
// the narrow category set, then body codepoints from the wide one.
func (g *Generator) genLabel(script string) (string, error) {
	firsts, err := g.catalog.Get(script, catalog.Categories(labelFirstCategories...))
	if err != nil {
		return "", fmt.Errorf("failed to list first-position codepoints for script %q: %w", script, err)
	}
	body, err := g.catalog.Get(script, catalog.Categories(labelBodyCategories...))
	if err != nil {
		return "", fmt.Errorf("failed to list label codepoints for script %q: %w", script, err)
	}
	n, err := g.draws.UniformIndex(g.config.MaxStringLength-1, ReasonHostLabelLength)
	if err != nil {
		return "", fmt.Errorf("failed to draw label length: %w", err)
	}
	length := n + 1
	first, err := randsource.PickFrom(g.draws, firsts, ReasonHostLabelFirst)
	if err != nil {
		return "", fmt.Errorf("failed to pick a first label codepoint for script %q: %w", script, err)
	}
	runes := make([]rune, 0, length)
	runes = append(runes, first.Code)
	for uint32(len(runes)) < length {
		info, err := randsource.PickFrom(g.draws, body, ReasonHostLabelRune)
		if err != nil {
			return "", fmt.Errorf("failed to pick a label codepoint for script %q: %w", script, err)
		}
		runes = append(runes, info.Code)
	}
	return string(runes), nil
}
