package catalog

import (
	"sort"
	"strings"
)

const allKey = "all"

// Filter narrows a script's codepoint list. The zero value keeps everything.
type Filter struct {
	validOnly  bool
	categories []string
}

// All keeps the script's full codepoint list.
func All() Filter {
	return Filter{}
}

// ValidOnly keeps only codepoints whose validity property is PVALID, the
// shape used for machine-identifier-safe text.
func ValidOnly() Filter {
	return Filter{validOnly: true}
}

// Categories keeps only codepoints whose general category is among names.
// Names are deduplicated and order-insensitive.
func Categories(names ...string) Filter {
	seen := make(map[string]struct{}, len(names))
	dedup := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		dedup = append(dedup, name)
	}
	sort.Strings(dedup)
	return Filter{categories: dedup}
}

// key is the cache key for a filtered view of one script.
func (f Filter) key() string {
	switch {
	case f.validOnly:
		return "valid"
	case len(f.categories) > 0:
		return "cat:" + strings.Join(f.categories, ",")
	default:
		return allKey
	}
}
