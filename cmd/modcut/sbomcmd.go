package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/orchestrator"
	"github.com/modcut/modcut/platform/jdk"
	"github.com/modcut/modcut/sbom"
)

func runSBOM(ctx context.Context, cc *commonConfig, args []string) error {
	fs := flag.NewFlagSet("sbom", flag.ExitOnError)
	concurrency := fs.Int("concurrency", runtime.GOMAXPROCS(0), "maximum number of analyzer tasks in flight")
	docName := fs.String("document-name", "modcut-sbom", "SPDX DocumentName field")
	docNamespace := fs.String("document-namespace", "https://modcut.invalid/sbom", "SPDX DocumentNamespace field")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("sbom: at least one archive or directory argument is required")
	}

	archives, dispose, warnings, err := discoverAll(ctx, fs.Args())
	if err != nil {
		return err
	}
	defer dispose()
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	plat := jdk.New(cc.javaHome)
	orc := orchestrator.New(plat, *concurrency)

	cfg := modcut.DefaultConfig()
	cfg.Archives = archives
	res, err := orc.Analyze(ctx, cfg)
	if err != nil {
		return fmt.Errorf("sbom: %w", err)
	}

	enc := &sbom.Encoder{
		Creators:          []sbom.Creator{{Creator: "modcut", CreatorType: "Tool"}},
		DocumentName:      *docName,
		DocumentNamespace: *docNamespace,
	}
	doc, err := enc.Encode(ctx, res, plat.Info().Release)
	if err != nil {
		return fmt.Errorf("sbom: encoding: %w", err)
	}
	_, err = io.Copy(os.Stdout, doc)
	return err
}
