// Package jdk adapts a local JDK installation's $JAVA_HOME into the
// platform.Platform interface: module descriptors and resources come from
// $JAVA_HOME/jmods, the static-dependency and image-linker tools are
// $JAVA_HOME/bin/jdeps and $JAVA_HOME/bin/jlink invoked via os/exec. This is
// a black-box process/filesystem boundary with no ecosystem library in the
// example corpus wiring anything comparable, so it is stdlib-only by
// necessity rather than choice (justified in DESIGN.md).
package jdk

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/zip"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/classfile"
	"github.com/modcut/modcut/platform"
)

var jmodMagic = []byte{'J', 'M', 1, 0}

// Adapter implements platform.Platform over a $JAVA_HOME directory.
type Adapter struct {
	home string

	once     sync.Once
	initErr  error
	modules  modcut.ModuleSet
	requires map[modcut.ModuleName]modcut.ModuleSet
	jmodPath map[modcut.ModuleName]string
}

var _ platform.Platform = (*Adapter)(nil)

// New constructs an Adapter rooted at javaHome ($JAVA_HOME). It does not
// touch the filesystem until first use.
func New(javaHome string) *Adapter {
	return &Adapter{home: javaHome}
}

func (a *Adapter) init() error {
	a.once.Do(func() {
		dir := filepath.Join(a.home, "jmods")
		entries, err := os.ReadDir(dir)
		if err != nil {
			a.initErr = &modcut.Error{Kind: modcut.ErrToolUnavailable, Inner: err, Message: dir, Op: "jdk.Adapter.init"}
			return
		}
		a.modules = modcut.NewModuleSet()
		a.requires = make(map[modcut.ModuleName]modcut.ModuleSet)
		a.jmodPath = make(map[modcut.ModuleName]string)

		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".jmod") {
				continue
			}
			path := filepath.Join(dir, e.Name())
			info, err := readJmodModuleInfo(path)
			if err != nil {
				a.initErr = fmt.Errorf("reading %s: %w", path, err)
				return
			}
			name := modcut.ModuleName(info.Name)
			a.modules.Add(name)
			a.jmodPath[name] = path
			reqs := modcut.NewModuleSet()
			for _, r := range info.Requires {
				reqs.Add(modcut.ModuleName(r.Name))
			}
			a.requires[name] = reqs
		}
	})
	return a.initErr
}

// readJmodModuleInfo opens a .jmod file and parses its
// classes/module-info.class entry. JMOD files are a 4-byte magic/version
// header ("JM" + version bytes) followed by an ordinary ZIP stream.
func readJmodModuleInfo(path string) (*classfile.ModuleInfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw) < len(jmodMagic) || !bytes.Equal(raw[:len(jmodMagic)], jmodMagic) {
		return nil, fmt.Errorf("not a jmod file (bad magic)")
	}
	body := raw[len(jmodMagic):]
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, err
	}
	const descriptorPath = "classes/module-info.class"
	f, err := zr.Open(descriptorPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", descriptorPath, err)
	}
	defer f.Close()
	return classfile.ReadModuleInfo(f)
}

func (a *Adapter) AvailableModules() modcut.ModuleSet {
	if err := a.init(); err != nil {
		return modcut.NewModuleSet()
	}
	return a.modules.Union()
}

func (a *Adapter) Requires(m modcut.ModuleName) (modcut.ModuleSet, bool) {
	if err := a.init(); err != nil {
		return nil, false
	}
	reqs, ok := a.requires[m]
	if !ok {
		return nil, false
	}
	return reqs.Union(), true
}

func (a *Adapter) Resources(m modcut.ModuleName) ([]string, error) {
	if err := a.init(); err != nil {
		return nil, err
	}
	path, ok := a.jmodPath[m]
	if !ok {
		return nil, &modcut.Error{Kind: modcut.ErrMissingModule, Message: string(m), Op: "jdk.Adapter.Resources"}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	body := raw[len(jmodMagic):]
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, err
	}
	const prefix = "classes/"
	out := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		out = append(out, strings.TrimPrefix(f.Name, prefix))
	}
	sort.Strings(out)
	return out, nil
}

// StaticDeps shells out to jdeps with flags matching spec.md §6: ignore
// missing deps, print only module deps, multi-release target version, a
// classpath of every archive, and the non-modular targets to analyze.
func (a *Adapter) StaticDeps(ctx context.Context, classpath, targets []string) (modcut.ModuleSet, error) {
	if len(targets) == 0 {
		return modcut.NewModuleSet(), nil
	}
	bin := filepath.Join(a.home, "bin", "jdeps")
	args := []string{
		"--ignore-missing-deps",
		"--print-module-deps",
		"--multi-release", strconv.Itoa(currentFeatureVersion()),
		"-classpath", strings.Join(classpath, string(os.PathListSeparator)),
	}
	args = append(args, targets...)

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &modcut.Error{
			Kind:    modcut.ErrStaticDepFailure,
			Inner:   err,
			Message: strings.TrimSpace(stderr.String()),
			Op:      "jdk.Adapter.StaticDeps",
		}
	}
	line := strings.TrimSpace(stdout.String())
	if line == "" {
		return modcut.NewModuleSet(), nil
	}
	names := make([]modcut.ModuleName, 0)
	for _, n := range strings.Split(line, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			names = append(names, modcut.ModuleName(n))
		}
	}
	return modcut.NewModuleSet(names...), nil
}

// Link shells out to jlink with the flags spec.md §6 names.
func (a *Adapter) Link(ctx context.Context, opts platform.LinkOptions) error {
	bin := filepath.Join(a.home, "bin", "jlink")
	args := []string{
		"--add-modules", strings.Join(opts.AddModules, ","),
		"--output", opts.Output,
	}
	if opts.StripDebug {
		args = append(args, "--strip-debug")
	}
	if opts.Compress != "" {
		args = append(args, "--compress", opts.Compress)
	}
	if opts.NoHeaders {
		args = append(args, "--no-header-files")
	}
	if opts.NoManPages {
		args = append(args, "--no-man-pages")
	}
	if len(opts.ModulePath) > 0 {
		args = append(args, "--module-path", strings.Join(opts.ModulePath, string(os.PathListSeparator)))
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &modcut.Error{
			Kind:    modcut.ErrAnalysisFailure,
			Inner:   err,
			Message: strings.TrimSpace(stderr.String()),
			Op:      "jdk.Adapter.Link",
		}
	}
	return nil
}

func (a *Adapter) Info() modcut.PlatformInfo {
	out, err := exec.Command(filepath.Join(a.home, "bin", "java"), "-version").CombinedOutput()
	if err != nil {
		return modcut.PlatformInfo{}
	}
	return parseVersionOutput(string(out))
}

var versionLine = func(s string) (release, vendor string) {
	lines := strings.Split(s, "\n")
	for _, l := range lines {
		switch {
		case strings.Contains(l, "version"):
			if i := strings.Index(l, `"`); i != -1 {
				j := strings.Index(l[i+1:], `"`)
				if j != -1 {
					release = l[i+1 : i+1+j]
				}
			}
		case strings.Contains(l, "Runtime Environment"):
			vendor = strings.TrimSpace(strings.SplitN(l, "Runtime Environment", 2)[0])
		}
	}
	return release, vendor
}

func parseVersionOutput(s string) modcut.PlatformInfo {
	release, vendor := versionLine(s)
	return modcut.PlatformInfo{Release: release, Vendor: vendor}
}

// currentFeatureVersion returns the feature version passed to jdeps'
// --multi-release: a fixed 9. It does not read the analyzed platform's
// release from Info().
func currentFeatureVersion() int { return 9 }
