// Command modcut is the CLI front end for the module-inference engine: it
// wires platform/jdk, discovery, orchestrator, cache, and sbom together
// behind three subcommands (analyze, cache, sbom), the same
// flag.FlagSet-plus-subcommand-dispatch shape cmd/cctool/main.go uses.
//
// modcut never invokes the platform's image-linker tool itself; "analyze"
// only prints the resolved module list and the --add-modules argument a
// caller would hand to that tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var cleanup sync.WaitGroup

type commonConfig struct {
	javaHome string
}

type subcmd func(context.Context, *commonConfig, []string) error

var subcommands = map[string]subcmd{
	"analyze": runAnalyze,
	"cache":   runCache,
	"sbom":    runSBOM,
}

func main() {
	var exit int
	defer func() {
		if exit != 0 {
			os.Exit(exit)
		}
	}()

	ctx, done := context.WithCancel(context.Background())
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		<-ch
		done()
	}()

	var cfg commonConfig
	fs := flag.NewFlagSet("modcut", flag.ExitOnError)
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nSubcommands\n\n")
		fmt.Fprintln(out, "analyze\n\tanalyze one or more archives and print the resolved module list")
		fmt.Fprintln(out, "cache\n\tinspect or clear the on-disk analysis cache")
		fmt.Fprintln(out, "sbom\n\tanalyze and emit an SPDX document for the resolved modules")
	}
	fs.StringVar(&cfg.javaHome, "java-home", os.Getenv("JAVA_HOME"), "path to the JDK installation to analyze against")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatal(err)
	}

	var cmd subcmd
	name := fs.Arg(0)
	switch cmd = subcommands[name]; {
	case cmd != nil:
	case name == "":
		fs.Usage()
		os.Exit(99)
	default:
		fs.Usage()
		fmt.Fprintf(os.Stderr, "\nunknown subcommand %q\n", name)
		os.Exit(99)
	}

	var cmdErr error
	cmdctx, cmddone := context.WithCancel(ctx)
	go func() {
		defer cmddone()
		cmdErr = cmd(cmdctx, &cfg, fs.Args()[1:])
	}()

	select {
	case <-ctx.Done():
		log.Print(ctx.Err())
		exit = 1
	case <-cmdctx.Done():
		if cmdErr != nil {
			log.Print(cmdErr)
			exit = 2
		}
	}
	cleanup.Wait()
}
