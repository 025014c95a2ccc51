package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/modcut/modcut/cache"
)

func runCache(ctx context.Context, cc *commonConfig, args []string) error {
	fs := flag.NewFlagSet("cache", flag.ExitOnError)
	path := fs.String("path", "", "path to the analysis cache database")
	clear := fs.Bool("clear", false, "remove every cached entry")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("cache: -path is required")
	}

	c, err := cache.Open(*path)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer c.Close()

	if *clear {
		if err := c.Clear(ctx); err != nil {
			return fmt.Errorf("cache: clear: %w", err)
		}
		fmt.Println("cache cleared")
		return nil
	}

	n, err := c.Count(ctx)
	if err != nil {
		return fmt.Errorf("cache: count: %w", err)
	}
	fmt.Printf("%d cached entries at %s\n", n, *path)
	return nil
}
