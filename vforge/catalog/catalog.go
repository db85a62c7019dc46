// Package catalog materializes per-script codepoint lists on top of the
// classification index, lazily and memoized for the process lifetime.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	roaring "github.com/RoaringBitmap/roaring"
	"github.com/armon/go-radix"
	"github.com/sourcegraph/conc/pool"

	"github.com/ZanzyTHEbar/value-forge/vforge/codepoint"
)

// ErrUnknownScript reports a request for a script the index never discovered,
// or one whose property-table coverage is empty.
var ErrUnknownScript = errors.New("unknown script")

// CatalogStats tracks cache behavior of a catalog instance.
type CatalogStats struct {
	Lookups          int64
	Hits             int64
	Misses           int64
	PopulatedScripts int64
	CachedViews      int64
	mu               sync.RWMutex
}

// Catalog serves ordered per-script codepoint lists. Population is lazy and
// synchronized, so one instance can back concurrent generators; the
// classification data underneath never changes, so entries are cached for
// the catalog's lifetime and never invalidated.
type Catalog struct {
	index      *codepoint.Index
	mu         sync.RWMutex
	cache      map[string]map[string][]codepoint.CodepointInfo // script -> filter key -> view
	categories *CategoryBitmaps
	names      *radix.Tree // lowercased usable script name -> canonical name
	stats      *CatalogStats
}

// New builds a catalog over a loaded index.
func New(ix *codepoint.Index) *Catalog {
	c := &Catalog{
		index:      ix,
		cache:      make(map[string]map[string][]codepoint.CodepointInfo),
		categories: NewCategoryBitmaps(),
		names:      radix.New(),
		stats:      &CatalogStats{},
	}
	for _, name := range ix.UsableScripts() {
		c.names.Insert(strings.ToLower(name), name)
	}
	return c
}

// Index returns the classification index the catalog reads from.
func (c *Catalog) Index() *codepoint.Index {
	return c.index
}

// Scripts returns the usable script names in index order.
func (c *Catalog) Scripts() []string {
	return c.index.UsableScripts()
}

// Get returns the ordered codepoints of script, narrowed by filter. The
// underlying scan over the script's [FirstCode, LastCode] range happens at
// most once per script; the range is a superset, so codepoints resolving to
// a different script are dropped during the scan.
func (c *Catalog) Get(script string, filter Filter) ([]codepoint.CodepointInfo, error) {
	sr, ok := c.index.Script(script)
	if !ok || sr.Count == 0 {
		return nil, c.unknownScript(script)
	}

	key := filter.key()

	c.mu.RLock()
	list, cached := c.viewLocked(script, key)
	base, haveBase := c.viewLocked(script, allKey)
	c.mu.RUnlock()

	c.stats.mu.Lock()
	c.stats.Lookups++
	if cached {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	c.stats.mu.Unlock()

	if cached {
		return list, nil
	}

	if !haveBase {
		scanned, err := c.scan(script, sr)
		if err != nil {
			return nil, err
		}
		base = scanned
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have raced us here while we scanned.
	if list, cached := c.viewLocked(script, key); cached {
		return list, nil
	}
	views, populated := c.cache[script]
	if !populated {
		views = make(map[string][]codepoint.CodepointInfo)
		views[allKey] = base
		c.cache[script] = views
		for _, info := range base {
			c.categories.Add(info.Category, uint32(info.Code))
		}
		c.stats.mu.Lock()
		c.stats.PopulatedScripts++
		c.stats.CachedViews++
		c.stats.mu.Unlock()
		slog.Debug("Catalog script populated",
			"script", script,
			"codepoints", len(base))
	}

	list = c.applyFilter(views[allKey], filter)
	if key != allKey {
		views[key] = list
		c.stats.mu.Lock()
		c.stats.CachedViews++
		c.stats.mu.Unlock()
	}
	return list, nil
}

// Prepopulate eagerly materializes the named scripts, or every usable script
// when none are named, so later Gets never pay the scan. Scripts populate
// concurrently; the first error cancels the rest.
func (c *Catalog) Prepopulate(ctx context.Context, scripts ...string) error {
	if len(scripts) == 0 {
		scripts = c.index.UsableScripts()
	}
	p := pool.New().
		WithMaxGoroutines(runtime.NumCPU()).
		WithContext(ctx).
		WithCancelOnError()
	for _, script := range scripts {
		p.Go(func(ctx context.Context) error {
			_, err := c.Get(script, All())
			return err
		})
	}
	if err := p.Wait(); err != nil {
		return fmt.Errorf("catalog prepopulation failed: %w", err)
	}
	slog.Debug("Catalog prepopulation completed", "scripts", len(scripts))
	return nil
}

// CategoryCodes returns the union bitmap of every populated codepoint in the
// named categories, across all populated scripts.
func (c *Catalog) CategoryCodes(categories ...string) *roaring.Bitmap {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.categories.Union(categories...)
}

// GetStats returns a copy of the catalog's counters.
func (c *Catalog) GetStats() CatalogStats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return CatalogStats{
		Lookups:          c.stats.Lookups,
		Hits:             c.stats.Hits,
		Misses:           c.stats.Misses,
		PopulatedScripts: c.stats.PopulatedScripts,
		CachedViews:      c.stats.CachedViews,
	}
}

// viewLocked fetches a cached view; callers hold at least a read lock.
func (c *Catalog) viewLocked(script, key string) ([]codepoint.CodepointInfo, bool) {
	views, ok := c.cache[script]
	if !ok {
		return nil, false
	}
	list, ok := views[key]
	return list, ok
}

// scan walks the script's superset range through the index, keeping the
// codepoints that actually resolve to the script. Runs without the cache
// lock; the index is immutable.
func (c *Catalog) scan(script string, sr codepoint.ScriptRecord) ([]codepoint.CodepointInfo, error) {
	infos := make([]codepoint.CodepointInfo, 0, sr.Count)
	for code := rune(sr.FirstCode); code <= rune(sr.LastCode); code++ {
		info, err := c.index.Lookup(code)
		if err != nil {
			return nil, fmt.Errorf("failed to scan script %q: %w", script, err)
		}
		if info == nil || info.Script != script {
			continue
		}
		infos = append(infos, *info)
	}
	return infos, nil
}

// applyFilter narrows a base list; called with the cache lock held so the
// category bitmaps are stable.
func (c *Catalog) applyFilter(base []codepoint.CodepointInfo, filter Filter) []codepoint.CodepointInfo {
	switch {
	case filter.validOnly:
		out := make([]codepoint.CodepointInfo, 0, len(base))
		for _, info := range base {
			if info.Property == codepoint.PropertyPVALID {
				out = append(out, info)
			}
		}
		return out
	case len(filter.categories) > 0:
		members := c.categories.Union(filter.categories...)
		out := make([]codepoint.CodepointInfo, 0, len(base))
		for _, info := range base {
			if members.Contains(uint32(info.Code)) {
				out = append(out, info)
			}
		}
		return out
	default:
		return base
	}
}

// unknownScript builds the request error, suggesting near-miss names from
// the radix index when any share a prefix.
func (c *Catalog) unknownScript(script string) error {
	suggestions := c.suggest(script)
	if len(suggestions) == 0 {
		return fmt.Errorf("%w %q", ErrUnknownScript, script)
	}
	return fmt.Errorf("%w %q (did you mean %s?)", ErrUnknownScript, script, strings.Join(suggestions, ", "))
}

// suggest walks progressively shorter lowercase prefixes of name until some
// usable script matches, returning at most three candidates.
func (c *Catalog) suggest(name string) []string {
	lower := strings.ToLower(name)
	for end := len(lower); end > 0; end-- {
		var found []string
		c.names.WalkPrefix(lower[:end], func(_ string, value interface{}) bool {
			found = append(found, value.(string))
			return len(found) >= 3
		})
		if len(found) > 0 {
			return found
		}
	}
	return nil
}
