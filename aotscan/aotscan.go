// Package aotscan implements AotMetadataScanner: it enumerates
// META-INF/native-image/** entries inside each archive, tolerantly parses
// the three ahead-of-time metadata JSON document shapes, and looks up every
// recovered class name against the reflection class-index (spec.md §4.9).
// It also optionally mines META-INF/maven/<g>/<a>/pom.properties for
// informational Maven coordinates, reusing java/jar/jar.go's
// line-scanning pom.properties parser verbatim for that half.
package aotscan

import (
	"bufio"
	"bytes"
	"encoding/json"
	"path"
	"strings"

	purl "github.com/package-url/packageurl-go"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/archive"
	"github.com/modcut/modcut/reflectscan"
)

const nativeImagePrefix = "META-INF/native-image/"

// Coordinate is an informational Maven coordinate recovered from a
// pom.properties file; it never contributes to the module set.
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
	Purl       string
	Source     string
}

// Result is AotMetadataScanner's output.
type Result struct {
	Modules     modcut.ModuleSet
	Coordinates []Coordinate
	Warnings    []string
}

type nameEntry struct {
	Name string `json:"name"`
}

type resourceConfig struct {
	Resources struct {
		Includes []struct {
			Pattern string `json:"pattern"`
		} `json:"includes"`
	} `json:"resources"`
}

// Scan walks every archive's META-INF/native-image entries and
// META-INF/maven pom.properties files.
func Scan(archives []*archive.Reader, idx *reflectscan.Index) Result {
	res := Result{Modules: modcut.NewModuleSet()}

	for _, ar := range archives {
		for _, name := range ar.Entries() {
			switch {
			case strings.HasPrefix(name, nativeImagePrefix) && strings.HasSuffix(name, "reflect-config.json"):
				scanNameList(ar, name, idx, &res)
			case strings.HasPrefix(name, nativeImagePrefix) && strings.HasSuffix(name, "jni-config.json"):
				scanNameList(ar, name, idx, &res)
			case strings.HasPrefix(name, nativeImagePrefix) && strings.HasSuffix(name, "resource-config.json"):
				scanResourceConfig(ar, name, idx, &res)
			case strings.HasPrefix(name, "META-INF/maven/") && path.Base(name) == "pom.properties":
				scanPomProperties(ar, name, &res)
			}
		}
	}
	return res
}

func scanNameList(ar *archive.Reader, name string, idx *reflectscan.Index, res *Result) {
	data, err := readEntry(ar, name)
	if err != nil {
		res.Warnings = append(res.Warnings, name+": "+err.Error())
		return
	}
	var entries []nameEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		res.Warnings = append(res.Warnings, name+": malformed JSON: "+err.Error())
		return
	}
	for _, e := range entries {
		if m, ok := idx.Lookup(e.Name); ok {
			res.Modules.Add(m)
		}
	}
}

func scanResourceConfig(ar *archive.Reader, name string, idx *reflectscan.Index, res *Result) {
	data, err := readEntry(ar, name)
	if err != nil {
		res.Warnings = append(res.Warnings, name+": "+err.Error())
		return
	}
	var cfg resourceConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		res.Warnings = append(res.Warnings, name+": malformed JSON: "+err.Error())
		return
	}
	for _, inc := range cfg.Resources.Includes {
		if !strings.HasSuffix(inc.Pattern, ".class") {
			continue
		}
		fqcn := strings.ReplaceAll(strings.TrimSuffix(inc.Pattern, ".class"), "/", ".")
		if m, ok := idx.Lookup(fqcn); ok {
			res.Modules.Add(m)
		}
	}
}

// scanPomProperties is adapted line-for-line from
// java/jar/jar.go's Info.parseProperties: scan for groupId/artifactId/version
// assignments, stopping once all three are found.
func scanPomProperties(ar *archive.Reader, name string, res *Result) {
	data, err := readEntry(ar, name)
	if err != nil {
		res.Warnings = append(res.Warnings, name+": "+err.Error())
		return
	}

	var group, artifact, version string
	s := bufio.NewScanner(bytes.NewReader(data))
	for s.Scan() && (group == "" || artifact == "" || version == "") {
		b := bytes.TrimSpace(s.Bytes())
		ls := bytes.SplitN(b, []byte("="), 2)
		if len(ls) != 2 {
			continue
		}
		switch {
		case bytes.Equal(ls[0], []byte("groupId")):
			group = string(ls[1])
		case bytes.Equal(ls[0], []byte("artifactId")):
			artifact = string(ls[1])
		case bytes.Equal(ls[0], []byte("version")):
			version = string(ls[1])
		}
	}
	if group == "" || artifact == "" || version == "" {
		return
	}

	coord := Coordinate{GroupID: group, ArtifactID: artifact, Version: version, Source: name}
	p := purl.PackageURL{
		Type:      "maven",
		Namespace: group,
		Name:      artifact,
		Version:   version,
	}
	coord.Purl = p.ToString()
	res.Coordinates = append(res.Coordinates, coord)
}

func readEntry(ar *archive.Reader, name string) ([]byte, error) {
	rc, err := ar.OpenEntry(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
