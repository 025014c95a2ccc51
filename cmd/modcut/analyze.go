package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/cache"
	"github.com/modcut/modcut/discovery"
	"github.com/modcut/modcut/orchestrator"
	"github.com/modcut/modcut/platform/jdk"
)

// analyzeResult is what "analyze" prints: the resolved module list plus the
// ready-to-paste image-linker argument, alongside the full
// modcut.AnalysisResult for anyone piping this to another tool.
type analyzeResult struct {
	Modules    []string              `json:"modules"`
	AddModules string                `json:"add_modules_arg"`
	Warnings   []string              `json:"warnings,omitempty"`
	Full       modcut.AnalysisResult `json:"analysis,omitempty"`
}

func runAnalyze(ctx context.Context, cc *commonConfig, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	addModules := fs.String("add-modules", "", "comma-separated modules to force-add to the resolved set")
	excludeModules := fs.String("exclude-modules", "", "comma-separated modules to remove from the merged set before transitive resolution")
	cryptoMode := fs.String("crypto-mode", string(modcut.CryptoAuto), "crypto-provider module override: auto, always, or never")
	noServiceProviders := fs.Bool("no-service-providers", false, "disable ServiceProviderScanner")
	noAotMetadata := fs.Bool("no-aot-metadata", false, "disable AotMetadataScanner")
	concurrency := fs.Int("concurrency", runtime.GOMAXPROCS(0), "maximum number of analyzer tasks in flight")
	cachePath := fs.String("cache", "", "path to an on-disk analysis cache; empty disables caching")
	asJSON := fs.Bool("json", false, "print the full analysis result as JSON instead of a module list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("analyze: at least one archive or directory argument is required")
	}

	cfg := modcut.DefaultConfig()
	cfg.CryptoMode = modcut.CryptoMode(*cryptoMode)
	cfg.ScanServiceProviders = !*noServiceProviders
	cfg.ScanAotMetadata = !*noAotMetadata
	cfg.AdditionalModules = parseModuleList(*addModules)
	cfg.ExcludeModules = parseModuleList(*excludeModules)

	archives, dispose, warnings, err := discoverAll(ctx, fs.Args())
	if err != nil {
		return err
	}
	defer dispose()
	cfg.Archives = archives

	plat := jdk.New(cc.javaHome)
	orc := orchestrator.New(plat, *concurrency)

	var c *cache.Cache
	var digest modcut.Digest
	if *cachePath != "" {
		c, err = cache.Open(*cachePath)
		if err != nil {
			return fmt.Errorf("analyze: opening cache: %w", err)
		}
		defer c.Close()
		digest, err = digestArchives(archives)
		if err != nil {
			return fmt.Errorf("analyze: digesting archives: %w", err)
		}
		if cached, hit, err := c.Lookup(ctx, digest); err == nil && hit {
			return printAnalysis(analyzeResult{
				Modules:    moduleNames(cached),
				AddModules: addModulesArg(cached),
				Warnings:   append(warnings, "served from cache"),
			}, *asJSON)
		}
	}

	res, err := orc.Analyze(ctx, cfg)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	res.Warnings = append(warnings, res.Warnings...)

	if c != nil {
		if err := c.Store(ctx, digest, res.AllModules); err != nil {
			return fmt.Errorf("analyze: storing cache entry: %w", err)
		}
	}

	return printAnalysis(analyzeResult{
		Modules:    moduleNames(res.AllModules),
		AddModules: addModulesArg(res.AllModules),
		Warnings:   res.Warnings,
		Full:       res,
	}, *asJSON)
}

func printAnalysis(r analyzeResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	fmt.Println(strings.Join(r.Modules, "\n"))
	fmt.Printf("--add-modules %s\n", r.AddModules)
	for _, w := range r.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return nil
}

func addModulesArg(mods modcut.ModuleSet) string {
	return strings.Join(moduleNames(mods), ",")
}

// moduleNames renders a ModuleSet's sorted names as plain strings, for
// output formats that don't care about the distinct ModuleName type.
func moduleNames(mods modcut.ModuleSet) []string {
	sorted := mods.Sorted()
	out := make([]string, len(sorted))
	for i, n := range sorted {
		out[i] = string(n)
	}
	return out
}

func parseModuleList(s string) modcut.ModuleSet {
	set := modcut.NewModuleSet()
	for _, n := range strings.Split(s, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			set.Add(modcut.ModuleName(n))
		}
	}
	return set
}

// discoverAll runs discovery.Discover over every input path, merging their
// archive lists and warnings; the returned dispose func must be called once
// the caller is done reading from the merged archive list.
func discoverAll(ctx context.Context, inputs []string) (archives []string, dispose func(), warnings []string, err error) {
	var results []*discovery.Result
	dispose = func() {
		for _, r := range results {
			r.Dispose()
		}
	}
	for _, in := range inputs {
		r, err := discovery.Discover(ctx, in)
		if err != nil {
			dispose()
			return nil, func() {}, nil, fmt.Errorf("discovering %s: %w", in, err)
		}
		results = append(results, r)
		archives = append(archives, r.Archives...)
		warnings = append(warnings, r.Warnings...)
	}
	return archives, dispose, warnings, nil
}

// digestArchives combines each archive's content digest into one cache key,
// covering the whole analysis run rather than a single archive: modcut.Digest
// is documented as "an archive's" content hash, but a CLI invocation
// typically analyzes several archives together, so the cache key here is the
// digest of every archive's digest, sorted by path for determinism.
func digestArchives(paths []string) (modcut.Digest, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	var combined []byte
	for _, p := range sorted {
		f, err := os.Open(p)
		if err != nil {
			return modcut.Digest{}, err
		}
		d, err := modcut.NewDigest(f)
		f.Close()
		if err != nil {
			return modcut.Digest{}, err
		}
		combined = append(combined, d.Checksum()...)
	}
	return modcut.DigestBytes(combined), nil
}
