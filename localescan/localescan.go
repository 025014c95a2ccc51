// Package localescan implements LocaleScanner: evidence that an archive
// depends on non-English locale data (spec.md §4.11). The trigger set is a
// literal stand-in for "introspect the running platform's Locale type for
// public static final fields" — this module never runs inside a JVM, so the
// known java.util.Locale constants are tabulated here and filtered down to a
// trigger set at init time the same way the spec describes computing it:
// drop any constant whose language subtag is empty (ROOT) or "en".
// golang.org/x/text/language backs that filtering, grounded on its presence
// in this corpus's own go.mod alongside konveyor-analyzer-lsp's usage.
package localescan

import (
	"fmt"
	"sort"

	"golang.org/x/text/language"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/archive"
	"github.com/modcut/modcut/classfile"
)

// LocaleDataModule is the platform module providing non-English locale data
// (spec.md §4.11's "locale-data-module").
const LocaleDataModule modcut.ModuleName = "jdk.localedata"

const localeClass = "java/util/Locale"

var tier2Classes = map[string]string{
	"java/time/format/DateTimeFormatter": "DateTimeFormatter",
	"java/util/ResourceBundle":           "ResourceBundle",
	"java/text/MessageFormat":            "MessageFormat",
	"java/text/ChoiceFormat":             "ChoiceFormat",
	"java/text/Collator":                 "Collator",
	"java/text/RuleBasedCollator":        "RuleBasedCollator",
	"java/text/NumberFormat":             "NumberFormat",
	"java/text/DateFormat":               "DateFormat",
}

// localeConstant mirrors one of java.util.Locale's public static final
// fields and the BCP-47-ish tag it constructs. Empty tag means ROOT.
type localeConstant struct {
	field string
	tag   string
}

var knownLocaleConstants = []localeConstant{
	{"ROOT", ""},
	{"ENGLISH", "en"},
	{"FRENCH", "fr"},
	{"GERMAN", "de"},
	{"ITALIAN", "it"},
	{"JAPANESE", "ja"},
	{"KOREAN", "ko"},
	{"CHINESE", "zh"},
	{"SIMPLIFIED_CHINESE", "zh-CN"},
	{"TRADITIONAL_CHINESE", "zh-TW"},
	{"FRANCE", "fr-FR"},
	{"GERMANY", "de-DE"},
	{"ITALY", "it-IT"},
	{"JAPAN", "ja-JP"},
	{"KOREA", "ko-KR"},
	{"CHINA", "zh-CN"},
	{"PRC", "zh-CN"},
	{"TAIWAN", "zh-TW"},
	{"UK", "en-GB"},
	{"US", "en-US"},
	{"CANADA", "en-CA"},
	{"CANADA_FRENCH", "fr-CA"},
}

// tier1TriggerFields is computed once from knownLocaleConstants: every field
// whose language subtag is non-empty and not "en".
var tier1TriggerFields = computeTriggerSet(knownLocaleConstants)

func computeTriggerSet(constants []localeConstant) map[string]struct{} {
	out := make(map[string]struct{})
	for _, c := range constants {
		if c.tag == "" {
			continue // ROOT carries no language
		}
		tag, err := language.Parse(c.tag)
		if err != nil {
			continue
		}
		base, _ := tag.Base()
		switch base.String() {
		case "", "en":
			continue
		}
		out[c.field] = struct{}{}
	}
	return out
}

// Result is LocaleScanner's per-run output, shaped to feed
// modcut.LocaleResult directly. Confidence is the highest tier observed
// across every scanned archive (spec.md §4.11).
type Result struct {
	Confidence         modcut.Confidence
	Tier1Hits          []string
	Tier2Hits          []string
	Tier3Hits          []string
	ArchivesImplicated []string
}

// Modules returns this scan's module contribution: LocaleDataModule only
// when Tier 1 evidence was observed, empty otherwise (Tier 2/3 are advisory
// only and never gate a module).
func (r Result) Modules() modcut.ModuleSet {
	if r.Confidence == modcut.ConfidenceDefinite {
		return modcut.NewModuleSet(LocaleDataModule)
	}
	return modcut.NewModuleSet()
}

type accumulator struct {
	confidence modcut.Confidence
	tier1      map[string]struct{}
	tier2      map[string]struct{}
	tier3      map[string]struct{}
	archives   map[string]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{
		tier1:    make(map[string]struct{}),
		tier2:    make(map[string]struct{}),
		tier3:    make(map[string]struct{}),
		archives: make(map[string]struct{}),
	}
}

func (a *accumulator) bump(c modcut.Confidence) {
	if c > a.confidence {
		a.confidence = c
	}
}

func (a *accumulator) hit(c modcut.Confidence, archivePath, msg string) {
	a.bump(c)
	a.archives[archivePath] = struct{}{}
	switch c {
	case modcut.ConfidenceDefinite:
		a.tier1[msg] = struct{}{}
	case modcut.ConfidenceStrong:
		a.tier2[msg] = struct{}{}
	case modcut.ConfidencePossible:
		a.tier3[msg] = struct{}{}
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Scan walks every non-descriptor class entry in every archive.
func Scan(archives []*archive.Reader) Result {
	acc := newAccumulator()
	for _, ar := range archives {
		for _, name := range ar.ClassEntries() {
			scanEntry(ar, name, acc)
		}
	}

	return Result{
		Confidence:         acc.confidence,
		Tier1Hits:          sortedKeys(acc.tier1),
		Tier2Hits:          sortedKeys(acc.tier2),
		Tier3Hits:          sortedKeys(acc.tier3),
		ArchivesImplicated: sortedKeys(acc.archives),
	}
}

func scanEntry(ar *archive.Reader, name string, acc *accumulator) {
	rc, err := ar.OpenEntry(name)
	if err != nil {
		return
	}
	defer rc.Close()

	v := classfile.Visitor{
		StaticFieldGet: func(owner, field string) {
			if owner != localeClass {
				return
			}
			if _, ok := tier1TriggerFields[field]; ok {
				acc.hit(modcut.ConfidenceDefinite, ar.Path(), fmt.Sprintf("getstatic Locale.%s", field))
			}
		},
		TypeRef: func(typeName string) {
			if typeName == localeClass {
				acc.hit(modcut.ConfidencePossible, ar.Path(), "reference to java.util.Locale")
				return
			}
			if label, ok := tier2Classes[typeName]; ok {
				acc.hit(modcut.ConfidenceStrong, ar.Path(), fmt.Sprintf("reference to %s", label))
			}
		},
	}
	_ = classfile.Walk(rc, v) // malformed class files are per-entry recoverable
}
