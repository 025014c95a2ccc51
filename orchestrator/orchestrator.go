// Package orchestrator implements the Orchestrator: it opens every archive
// once, fans the nine analyzers out across a bounded worker pool (the same
// errgroup.SetLimit shape indexer/layerscanner.go uses for per-layer
// scanner fan-out), merges their module contributions, applies the
// crypto-mode override and the additional/exclude module adjustments, and
// closes the result over resolver.Resolver.Resolve (spec.md §4.15, §5).
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/apiscan"
	"github.com/modcut/modcut/aotscan"
	"github.com/modcut/modcut/archive"
	"github.com/modcut/modcut/cryptoscan"
	"github.com/modcut/modcut/internal/obslog"
	"github.com/modcut/modcut/jmxscan"
	"github.com/modcut/modcut/localescan"
	"github.com/modcut/modcut/platform"
	"github.com/modcut/modcut/reflectscan"
	"github.com/modcut/modcut/resolver"
	"github.com/modcut/modcut/serviceprovider"
	"github.com/modcut/modcut/staticdep"
	"github.com/modcut/modcut/zipfsscan"
)

// Orchestrator runs a complete analysis over a set of archives against one
// running platform. Build one with New and reuse it across Analyze calls;
// its reflection index and resolver's module graph are both built once and
// are safe for concurrent reuse.
type Orchestrator struct {
	plat        platform.Platform
	resolver    *resolver.Resolver
	staticDep   *staticdep.Analyzer
	reflectIdx  *reflectscan.Index
	maxInFlight int
}

// New builds an Orchestrator bound to plat. maxConcurrent caps both the
// number of simultaneously running analyzer tasks per Analyze call and, via
// staticdep.New, the external static-dependency tool's process-spawn rate.
func New(plat platform.Platform, maxConcurrent int) *Orchestrator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Orchestrator{
		plat:        plat,
		resolver:    resolver.New(plat),
		staticDep:   staticdep.New(plat, maxConcurrent),
		reflectIdx:  reflectscan.NewIndex(plat),
		maxInFlight: maxConcurrent,
	}
}

// Analyze runs every analyzer over cfg.Archives and returns the resolved
// module set plus per-archive breakdown (spec.md §4.15's seven steps). Any
// analyzer's fatal error, or a resolution failure, discards every partial
// result: the returned AnalysisResult is only ever meaningful alongside a
// nil error.
func (o *Orchestrator) Analyze(ctx context.Context, cfg modcut.Config) (modcut.AnalysisResult, error) {
	if err := metricInit(); err != nil {
		return modcut.AnalysisResult{}, err
	}
	ctx, span := tracer.Start(ctx, "Orchestrator.Analyze")
	defer span.End()
	ctx = obslog.With(ctx, "archive_count", len(cfg.Archives))
	slog.InfoContext(ctx, "analysis start")

	if len(cfg.Archives) == 0 {
		return modcut.AnalysisResult{}, &modcut.Error{
			Kind:    modcut.ErrInputNotFound,
			Message: "no archives to analyze",
			Op:      "orchestrator.Analyze",
		}
	}

	readers, closers, warnings := o.openArchives(ctx, cfg.Archives)
	defer closeAll(closers)

	var (
		serviceRes serviceprovider.Result
		apiRes     apiscan.Result
		reflectRes reflectscan.Result
		aotRes     aotscan.Result
		cryptoRes  cryptoscan.Result
		localeRes  localescan.Result
		zipfsRes   zipfsscan.Result
		jmxRes     jmxscan.Result
		staticRes  modcut.ModuleSet
		perArchive map[string]modcut.ModuleSet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxInFlight)

	if cfg.ScanServiceProviders {
		g.Go(task(gctx, "service-provider", func() error {
			serviceRes = serviceprovider.Scan(readers)
			return nil
		}))
	} else {
		serviceRes = serviceprovider.Result{Modules: modcut.NewModuleSet()}
	}

	g.Go(task(gctx, "api-usage", func() error {
		apiRes = apiscan.Scan(readers)
		return nil
	}))

	g.Go(task(gctx, "reflection", func() error {
		reflectRes = reflectscan.Scan(readers, o.reflectIdx)
		return nil
	}))

	if cfg.ScanAotMetadata {
		g.Go(task(gctx, "aot-metadata", func() error {
			aotRes = aotscan.Scan(readers, o.reflectIdx)
			return nil
		}))
	} else {
		aotRes = aotscan.Result{Modules: modcut.NewModuleSet()}
	}

	g.Go(task(gctx, "crypto", func() error {
		cryptoRes = cryptoscan.Scan(readers)
		return nil
	}))

	g.Go(task(gctx, "locale", func() error {
		localeRes = localescan.Scan(readers)
		return nil
	}))

	g.Go(task(gctx, "zipfs", func() error {
		zipfsRes = zipfsscan.Scan(readers)
		return nil
	}))

	g.Go(task(gctx, "jmx", func() error {
		jmxRes = jmxscan.Scan(readers)
		return nil
	}))

	g.Go(task(gctx, "static-dep", func() error {
		mods, err := o.staticDep.Analyze(gctx, cfg.Archives)
		if err != nil {
			return fmt.Errorf("static dependency analysis: %w", err)
		}
		staticRes = mods
		return nil
	}))

	g.Go(task(gctx, "static-dep-per-archive", func() error {
		pa, err := o.staticDep.AnalyzePerArchive(gctx, cfg.Archives)
		if err != nil {
			return fmt.Errorf("per-archive static dependency analysis: %w", err)
		}
		perArchive = pa
		return nil
	}))

	if err := g.Wait(); err != nil {
		analysisRuns.WithLabelValues("failure").Inc()
		return modcut.AnalysisResult{}, &modcut.Error{
			Kind:    modcut.ErrAnalysisFailure,
			Inner:   err,
			Message: "one or more analyzers failed",
			Op:      "orchestrator.Analyze",
		}
	}

	raw := serviceRes.Modules.Union(
		apiRes.Modules,
		reflectRes.Modules,
		aotRes.Modules,
		staticRes,
		localeRes.Modules(),
		zipfsRes.Modules(),
		jmxRes.Modules(),
	)

	cryptoModules := cryptoRes.Modules()
	switch cfg.CryptoMode {
	case modcut.CryptoAlways:
		cryptoModules = modcut.NewModuleSet(cryptoscan.CryptoProviderModule)
	case modcut.CryptoNever:
		if len(cryptoModules) > 0 {
			warnings = append(warnings, "crypto_mode=never suppressed a crypto-provider module requirement despite scanner evidence")
		}
		cryptoModules = modcut.NewModuleSet()
	case modcut.CryptoAuto, "":
		// Honor the scanner's own finding as-is.
	}
	raw = raw.Union(cryptoModules, cfg.AdditionalModules).Subtract(cfg.ExcludeModules)

	resolved, err := o.resolver.Resolve(raw)
	if err != nil {
		analysisRuns.WithLabelValues("failure").Inc()
		return modcut.AnalysisResult{}, &modcut.Error{
			Kind:    modcut.ErrAnalysisFailure,
			Inner:   err,
			Message: "resolving transitive module closure",
			Op:      "orchestrator.Analyze",
		}
	}

	for _, iface := range serviceRes.Unknown {
		warnings = append(warnings, fmt.Sprintf("unrecognized service-provider interface: %s", iface))
	}
	warnings = append(warnings, apiRes.Warnings...)
	warnings = append(warnings, aotRes.Warnings...)

	coords := make([]modcut.MavenCoordinate, len(aotRes.Coordinates))
	for i, c := range aotRes.Coordinates {
		coords[i] = modcut.MavenCoordinate{
			GroupID:    c.GroupID,
			ArtifactID: c.ArtifactID,
			Version:    c.Version,
			Purl:       c.Purl,
			Source:     c.Source,
		}
	}

	analysisRuns.WithLabelValues("success").Inc()
	slog.InfoContext(ctx, "analysis done", "module_count", len(resolved))

	return modcut.AnalysisResult{
		ServiceProviderModules: serviceRes.Modules,
		ApiUsageModules:        apiRes.Modules,
		ReflectionModules:      reflectRes.Modules,
		AotMetadataModules:     aotRes.Modules,
		StaticDepModules:       staticRes,
		Crypto: modcut.CryptoResult{
			Modules:            cryptoRes.Modules(),
			PatternsMatched:    cryptoRes.PatternsMatched,
			ArchivesImplicated: cryptoRes.ArchivesImplicated,
		},
		Locale: modcut.LocaleResult{
			Modules:            localeRes.Modules(),
			Tier1Hits:          localeRes.Tier1Hits,
			Tier2Hits:          localeRes.Tier2Hits,
			Tier3Hits:          localeRes.Tier3Hits,
			ArchivesImplicated: localeRes.ArchivesImplicated,
			Confidence:         localeRes.Confidence,
		},
		ZipFs: modcut.ZipFsResult{
			Modules:  zipfsRes.Modules(),
			Patterns: zipfsRes.Patterns,
			Archives: zipfsRes.Archives,
		},
		Jmx: modcut.JmxResult{
			Modules:  jmxRes.Modules(),
			Patterns: jmxRes.Patterns,
			Archives: jmxRes.Archives,
		},
		AllModules:  resolved,
		PerArchive:  perArchive,
		Coordinates: coords,
		Warnings:    warnings,
	}, nil
}

// openArchives opens every archive path once, producing the shared
// []*archive.Reader every analyzer above reads from concurrently. A
// klauspost/compress/zip.File's Open method hands back an independent
// decompressing reader per call without mutating shared state, so one
// Reader is safe to fan out across goroutines the same way
// discovery.discoverArchive shares a single Reader across its parallel
// extraction goroutines. Corrupt archives are recoverable (spec.md §7:
// ErrCorruptArchive): skipped with a warning, never fatal to the run.
func (o *Orchestrator) openArchives(ctx context.Context, paths []string) ([]*archive.Reader, []io.Closer, []string) {
	readers := make([]*archive.Reader, 0, len(paths))
	closers := make([]io.Closer, 0, len(paths))
	var warnings []string

	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable archive", "archive", p, "reason", err)
			warnings = append(warnings, fmt.Sprintf("opening %s: %v", p, err))
			archivesOpened.WithLabelValues("corrupt").Inc()
			continue
		}
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			slog.WarnContext(ctx, "skipping unreadable archive", "archive", p, "reason", err)
			warnings = append(warnings, fmt.Sprintf("statting %s: %v", p, err))
			archivesOpened.WithLabelValues("corrupt").Inc()
			continue
		}
		ar, err := archive.Open(p, f, fi.Size())
		if err != nil {
			f.Close()
			slog.WarnContext(ctx, "skipping corrupt archive", "archive", p, "reason", err)
			warnings = append(warnings, fmt.Sprintf("opening %s: %v", p, err))
			archivesOpened.WithLabelValues("corrupt").Inc()
			continue
		}
		readers = append(readers, ar)
		closers = append(closers, f)
		archivesOpened.WithLabelValues("opened").Inc()
	}
	return readers, closers, warnings
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}
