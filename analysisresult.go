package modcut

// ScannerOutput is the per-scanner result the simple (non-tagged) analyzers
// return: a set of required module names. The empty set is the identity
// value (spec §3).
type ScannerOutput struct {
	Modules ModuleSet
}

// Confidence is the locale-scanner's tiered evidence strength (spec §4.11).
//
//go:generate stringer -type=Confidence
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidencePossible
	ConfidenceStrong
	ConfidenceDefinite
)

// CryptoResult is CryptoScanner's tagged output (spec §3).
type CryptoResult struct {
	Modules            ModuleSet
	PatternsMatched    []string
	ArchivesImplicated []string
}

// LocaleResult is LocaleScanner's tagged output (spec §3).
//
// Modules is only ever empty or {jdk.localedata}: Tier-2/3 evidence is
// advisory and never contributes to Modules (spec §4.11, testable property
// 8).
type LocaleResult struct {
	Modules            ModuleSet
	Tier1Hits          []string
	Tier2Hits          []string
	Tier3Hits          []string
	ArchivesImplicated []string
	Confidence         Confidence
}

// ZipFsResult is ZipFsScanner's tagged output (spec §3).
type ZipFsResult struct {
	Modules  ModuleSet
	Patterns []string
	Archives []string
}

// JmxResult is JmxScanner's tagged output (spec §3).
type JmxResult struct {
	Modules  ModuleSet
	Patterns []string
	Archives []string
}

// MavenCoordinate is an informational Maven coordinate AotMetadataScanner
// recovered from a pom.properties file (spec.md §4.9). It never contributes
// to AllModules; it rides along on AnalysisResult purely so an SBOM encoder
// can attribute application code to the artifact it shipped in.
type MavenCoordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
	Purl       string
	Source     string
}

// AnalysisResult is the Orchestrator's output (spec §3, §4.15).
//
// It's immutable once returned: nothing downstream should mutate its maps or
// sets.
type AnalysisResult struct {
	// ServiceProviderModules, ApiUsageModules, and ReflectionModules are the
	// plain-set scanner outputs.
	ServiceProviderModules ModuleSet
	ApiUsageModules        ModuleSet
	ReflectionModules      ModuleSet
	AotMetadataModules     ModuleSet
	StaticDepModules       ModuleSet

	// Crypto, Locale, ZipFs, and Jmx carry the tagged, structured results from
	// the scanners that report more than a plain set.
	Crypto CryptoResult
	Locale LocaleResult
	ZipFs  ZipFsResult
	Jmx    JmxResult

	// AllModules is the union of every scanner output above, plus
	// AdditionalModules, minus ExcludeModules, then passed through
	// ModuleResolver.Resolve — i.e. the final, closed, resolved set (spec §3
	// invariant: "all_modules = union of all scanner outputs ∪
	// additional_modules − exclude_modules", pre-resolution; the field here
	// holds the *post*-resolution value, which is what callers want).
	AllModules ModuleSet

	// PerArchive maps each input archive path to the module set discovered
	// in that archive alone (spec §3, §4.5 analyze_per_archive).
	PerArchive map[string]ModuleSet

	// Coordinates lists every Maven coordinate recovered by
	// AotMetadataScanner across all archives, for SBOM emission.
	Coordinates []MavenCoordinate

	// Warnings collects advisory messages from every analyzer: corrupt
	// archives, malformed classes, suppressed crypto-mode output, unresolved
	// legacy modules, unknown service interfaces, and so on. Warnings never
	// affect AllModules (spec §7).
	Warnings []string
}
