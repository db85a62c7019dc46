// Command vforge builds the codepoint index, generates random tree-shaped
// values from it, and records, stores, and replays the draw traces behind a
// run.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	internal "github.com/ZanzyTHEbar/value-forge/vforge"
	"github.com/ZanzyTHEbar/value-forge/vforge/catalog"
	"github.com/ZanzyTHEbar/value-forge/vforge/codepoint"
	"github.com/ZanzyTHEbar/value-forge/vforge/codepoint/ucd"
	"github.com/ZanzyTHEbar/value-forge/vforge/config"
	"github.com/ZanzyTHEbar/value-forge/vforge/db"
	"github.com/ZanzyTHEbar/value-forge/vforge/generator"
	"github.com/ZanzyTHEbar/value-forge/vforge/randsource"
)

const appName = "vforge"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "build-index":
		os.Exit(cmdBuildIndex(os.Args[2:]))
	case "generate":
		os.Exit(cmdGenerate(os.Args[2:]))
	case "replay":
		os.Exit(cmdReplay(os.Args[2:]))
	case "scripts":
		os.Exit(cmdScripts(os.Args[2:]))
	case "traces":
		os.Exit(cmdTraces(os.Args[2:]))
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Usage:
  %s build-index [flags]                 Build the codepoint index and persist it
  %s generate [flags]                    Generate random values as JSON lines
  %s replay (-name n | -file f) [flags]  Re-run a recorded trace
  %s scripts [flags]                     List the usable scripts in the index
  %s traces [-delete name]               List or delete stored traces

Run "%s <command> -h" for the flags of a command.
`, appName, appName, appName, appName, appName, appName)
}

// fail reports err the way every command reports failure.
func fail(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

// splitList splits a comma-separated flag value, trimming whitespace and
// dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// setFlags reports which flags were given explicitly, so a zero value on the
// command line can be told apart from an omitted flag.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// -----------------------------------------------------------------------------
// shared flag groups
// -----------------------------------------------------------------------------

// indexFlags selects where the codepoint index comes from: a persisted
// blob+sidecar pair, or the unicode tables compiled into the binary.
type indexFlags struct {
	blob       string
	sidecar    string
	goTables   bool
	scriptList string
}

func registerIndexFlags(fs *flag.FlagSet) *indexFlags {
	ixf := &indexFlags{}
	fs.StringVar(&ixf.blob, "index", "", "path to the trie blob (default: config)")
	fs.StringVar(&ixf.sidecar, "meta", "", "path to the metadata sidecar (default: config)")
	fs.BoolVar(&ixf.goTables, "go-tables", false, "build the index from the unicode tables compiled into the binary")
	fs.StringVar(&ixf.scriptList, "script-list", "", "comma-separated scripts to include with -go-tables (default: all)")
	return ixf
}

func (ixf *indexFlags) open(ic config.IndexConfig) (*codepoint.Index, error) {
	if ixf.goTables {
		names := splitList(ixf.scriptList)
		if len(names) == 0 {
			names = codepoint.GoScriptNames()
		}
		cdb := codepoint.FromGoTables(names...)
		return codepoint.Build(cdb, codepoint.AllValidTable(cdb))
	}
	blob, sidecar := ixf.blob, ixf.sidecar
	if blob == "" {
		blob = ic.BlobPath
	}
	if sidecar == "" {
		sidecar = ic.SidecarPath
	}
	return codepoint.Load(blob, sidecar)
}

// genFlags are the generation bounds shared by generate and replay. A replay
// must run with the same bounds as the recorded run, or the draw sequence
// diverges and the trace refuses to match.
type genFlags struct {
	maxDepth     uint
	maxContainer uint
	maxString    uint
	scripts      string
	exclude      string
}

func registerGenFlags(fs *flag.FlagSet) *genFlags {
	gf := &genFlags{}
	fs.UintVar(&gf.maxDepth, "max-depth", 0, "maximum nesting depth (default: config)")
	fs.UintVar(&gf.maxContainer, "max-container", 0, "exclusive bound on container sizes (default: config)")
	fs.UintVar(&gf.maxString, "max-string", 0, "exclusive bound on string lengths (default: config)")
	fs.StringVar(&gf.scripts, "scripts", "", "comma-separated allowed scripts (default: config)")
	fs.StringVar(&gf.exclude, "exclude", "", "comma-separated kinds to exclude (default: config)")
	return gf
}

// merge lays the explicitly given flags over the loaded settings. Zero is a
// legitimate -max-depth, so presence is decided by the set map rather than
// by value.
func (gf *genFlags) merge(set map[string]bool, gc config.GenerationConfig) generator.Config {
	out := generator.Config{
		MaxDepth:         gc.MaxDepth,
		MaxContainerSize: gc.MaxContainerSize,
		MaxStringLength:  gc.MaxStringLength,
		AllowedScripts:   gc.AllowedScripts,
		ExcludedKinds:    gc.ExcludedKinds,
	}
	if set["max-depth"] {
		out.MaxDepth = uint32(gf.maxDepth)
	}
	if set["max-container"] {
		out.MaxContainerSize = uint32(gf.maxContainer)
	}
	if set["max-string"] {
		out.MaxStringLength = uint32(gf.maxString)
	}
	if set["scripts"] {
		out.AllowedScripts = splitList(gf.scripts)
	}
	if set["exclude"] {
		out.ExcludedKinds = splitList(gf.exclude)
	}
	return out
}

// openTraceDB opens the trace store at dsn, or at the standard location when
// dsn is empty.
func openTraceDB(dsn string) (*db.TraceDBProvider, error) {
	if dsn == "" {
		return db.NewTraceDBProvider()
	}
	return db.NewTraceDBProviderAt(dsn)
}

// -----------------------------------------------------------------------------
// build-index
// -----------------------------------------------------------------------------

func cmdBuildIndex(args []string) int {
	fs := flag.NewFlagSet("build-index", flag.ContinueOnError)
	unicodeData := fs.String("unicode-data", "", "path to UnicodeData.txt")
	scriptsFile := fs.String("scripts", "", "path to Scripts.txt")
	properties := fs.String("properties", "", "path to the IDNA property table (.csv or UCD style)")
	goTables := fs.Bool("go-tables", false, "build from the unicode tables compiled into the binary")
	scriptList := fs.String("script-list", "", "comma-separated scripts to include with -go-tables (default: all)")
	out := fs.String("out", "", "output path for the trie blob (default: config)")
	meta := fs.String("meta", "", "output path for the metadata sidecar (default: config)")
	configPath := fs.String("config", "", "config file path")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fail(err)
	}
	if *out == "" {
		*out = cfg.VForge.Index.BlobPath
	}
	if *meta == "" {
		*meta = cfg.VForge.Index.SidecarPath
	}

	var (
		cdb   *codepoint.Database
		table []codepoint.PropertyRange
	)
	switch {
	case *goTables:
		names := splitList(*scriptList)
		if len(names) == 0 {
			names = codepoint.GoScriptNames()
		}
		cdb = codepoint.FromGoTables(names...)
		table = codepoint.AllValidTable(cdb)
	case *unicodeData != "" && *scriptsFile != "" && *properties != "":
		cdb, table, err = loadUCDFiles(*unicodeData, *scriptsFile, *properties)
		if err != nil {
			return fail(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "usage: %s build-index (-go-tables | -unicode-data f -scripts f -properties f)\n", appName)
		return 2
	}

	ix, err := codepoint.Build(cdb, table)
	if err != nil {
		return fail(err)
	}
	for _, p := range []string{*out, *meta} {
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fail(err)
			}
		}
	}
	if err := ix.Persist(*out, *meta); err != nil {
		return fail(err)
	}

	stats := ix.Stats()
	logger := internal.GetLogger()
	logger.Info().
		Int("codepoints", stats.IndexedCodepoints).
		Int("categories", stats.Categories).
		Int("scripts", stats.Scripts).
		Int("usable_scripts", stats.UsableScripts).
		Int("trie_pages", stats.TriePages).
		Int("trie_bytes", stats.TrieBytes).
		Str("blob", *out).
		Str("sidecar", *meta).
		Msg("codepoint index built")
	return 0
}

// loadUCDFiles parses the three UCD exports into a codepoint database and a
// property table.
func loadUCDFiles(unicodeData, scripts, properties string) (*codepoint.Database, []codepoint.PropertyRange, error) {
	uf, err := os.Open(unicodeData)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open unicode data: %w", err)
	}
	defer uf.Close()
	sf, err := os.Open(scripts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open scripts: %w", err)
	}
	defer sf.Close()
	cdb, err := ucd.LoadDatabase(uf, sf)
	if err != nil {
		return nil, nil, err
	}

	pf, err := os.Open(properties)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open derived properties: %w", err)
	}
	defer pf.Close()
	// IANA publishes the IDNA table as CSV ("0041-0044, PVALID"); UCD-style
	// exports use "0041..0044; PVALID". Dispatch on the extension.
	var table []codepoint.PropertyRange
	if strings.EqualFold(filepath.Ext(properties), ".csv") {
		table, err = codepoint.ParsePropertyTable(pf)
	} else {
		table, err = ucd.ParseDerivedProperties(pf)
	}
	if err != nil {
		return nil, nil, err
	}
	return cdb, table, nil
}

// -----------------------------------------------------------------------------
// generate
// -----------------------------------------------------------------------------

func cmdGenerate(args []string) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	count := fs.Int("count", 1, "number of values to generate")
	record := fs.String("record", "", "store the draw trace under this name in the trace database")
	traceOut := fs.String("trace-out", "", "write the draw trace to this file as JSON")
	dsn := fs.String("db", "", "trace database path for -record (default: the standard location)")
	configPath := fs.String("config", "", "config file path")
	ixf := registerIndexFlags(fs)
	gf := registerGenFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *count < 0 {
		return fail(fmt.Errorf("count cannot be negative"))
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fail(err)
	}
	ix, err := ixf.open(cfg.VForge.Index)
	if err != nil {
		return fail(err)
	}

	// Recording wraps a fresh generative source only when the trace is
	// wanted; a plain run draws without the bookkeeping.
	var rec *randsource.Recording
	var src randsource.Source
	if *record != "" || *traceOut != "" {
		rec = randsource.NewRecording(nil)
		src = rec
	}

	g, err := generator.New(gf.merge(setFlags(fs), cfg.VForge.Generation), src, catalog.New(ix))
	if err != nil {
		return fail(err)
	}

	enc := json.NewEncoder(os.Stdout)
	for i := 0; i < *count; i++ {
		v, err := g.Generate(0)
		if err != nil {
			return fail(err)
		}
		if err := enc.Encode(v); err != nil {
			return fail(err)
		}
	}

	if rec == nil {
		return 0
	}
	trace := rec.Trace()
	if *traceOut != "" {
		f, err := os.Create(*traceOut)
		if err != nil {
			return fail(err)
		}
		if err := randsource.EncodeTrace(f, trace); err != nil {
			f.Close()
			return fail(err)
		}
		if err := f.Close(); err != nil {
			return fail(err)
		}
	}
	if *record != "" {
		provider, err := openTraceDB(*dsn)
		if err != nil {
			return fail(err)
		}
		defer provider.Close()
		id, err := provider.InsertTrace(&db.TraceRecord{Name: *record, Entries: trace})
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(os.Stderr, "recorded trace %q (%s, %d draws)\n", *record, id, len(trace))
	}
	return 0
}

// -----------------------------------------------------------------------------
// replay
// -----------------------------------------------------------------------------

func cmdReplay(args []string) int {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	name := fs.String("name", "", "replay the stored trace with this name")
	file := fs.String("file", "", "replay a trace file written by generate -trace-out")
	dsn := fs.String("db", "", "trace database path for -name (default: the standard location)")
	configPath := fs.String("config", "", "config file path")
	ixf := registerIndexFlags(fs)
	gf := registerGenFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if (*name == "") == (*file == "") {
		fmt.Fprintf(os.Stderr, "usage: %s replay (-name name | -file file)\n", appName)
		return 2
	}

	var trace randsource.Trace
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return fail(err)
		}
		trace, err = randsource.DecodeTrace(f)
		f.Close()
		if err != nil {
			return fail(err)
		}
	} else {
		provider, err := openTraceDB(*dsn)
		if err != nil {
			return fail(err)
		}
		stored, err := provider.GetTraceByName(*name)
		provider.Close()
		if err != nil {
			return fail(err)
		}
		trace = stored.Entries
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fail(err)
	}
	ix, err := ixf.open(cfg.VForge.Index)
	if err != nil {
		return fail(err)
	}

	src := randsource.NewReplaying(trace)
	g, err := generator.New(gf.merge(setFlags(fs), cfg.VForge.Generation), src, catalog.New(ix))
	if err != nil {
		return fail(err)
	}

	// Any divergence from the recorded run (wrong bounds, different index,
	// changed exclusions) surfaces as a trace mismatch inside Generate.
	enc := json.NewEncoder(os.Stdout)
	values := 0
	for src.Remaining() > 0 {
		v, err := g.Generate(0)
		if err != nil {
			return fail(err)
		}
		if err := enc.Encode(v); err != nil {
			return fail(err)
		}
		values++
	}
	fmt.Fprintf(os.Stderr, "replayed %d draws into %d values\n", len(trace), values)
	return 0
}

// -----------------------------------------------------------------------------
// scripts
// -----------------------------------------------------------------------------

func cmdScripts(args []string) int {
	fs := flag.NewFlagSet("scripts", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file path")
	ixf := registerIndexFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fail(err)
	}
	ix, err := ixf.open(cfg.VForge.Index)
	if err != nil {
		return fail(err)
	}

	names := ix.UsableScripts()
	sort.Strings(names)
	for _, n := range names {
		sr, ok := ix.Script(n)
		if !ok {
			continue
		}
		fmt.Printf("%-24s %7d codepoints  U+%04X..U+%04X\n", n, sr.Count, sr.FirstCode, sr.LastCode)
	}
	fmt.Printf("%d usable scripts\n", len(names))
	return 0
}

// -----------------------------------------------------------------------------
// traces
// -----------------------------------------------------------------------------

func cmdTraces(args []string) int {
	fs := flag.NewFlagSet("traces", flag.ContinueOnError)
	del := fs.String("delete", "", "delete the stored trace with this name")
	dsn := fs.String("db", "", "trace database path (default: the standard location)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	provider, err := openTraceDB(*dsn)
	if err != nil {
		return fail(err)
	}
	defer provider.Close()

	if *del != "" {
		stored, err := provider.GetTraceByName(*del)
		if err != nil {
			return fail(err)
		}
		if err := provider.DeleteTrace(stored.ID); err != nil {
			return fail(err)
		}
		fmt.Printf("deleted trace %q\n", *del)
		return 0
	}

	records, err := provider.ListTraces()
	if err != nil {
		return fail(err)
	}
	if len(records) == 0 {
		fmt.Println("no stored traces")
		return 0
	}
	for _, stored := range records {
		fmt.Printf("%s  %-24s %6d draws  %s\n", stored.ID, stored.Name, len(stored.Entries), stored.CreatedAt.Format(time.RFC3339))
	}
	return 0
}
