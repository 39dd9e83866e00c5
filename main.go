package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the real entry point. Using a separate function ensures all defers
// (closing the working connection) execute even on error paths, unlike os.Exit
// which skips deferred calls.
func run(args []string) error {
	cfg, err := ParseConfig(args, os.Stderr)
	if err != nil {
		return err
	}

	prog := NewProgress(os.Stderr, cfg.Verbose)

	// Phase 1: attach the Hydrus databases to an in-memory working connection
	cat, err := OpenCatalog(cfg, prog)
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	// Phase 2: results table in the working connection's main schema
	store, err := NewResultStore(cat.Conn(), cfg.OutputTable, cfg.Output, prog)
	if err != nil {
		return err
	}

	driver, err := NewDriver(cfg, cat, store, prog)
	if err != nil {
		return err
	}

	// Phase 3: per-tag co-occurrence scan, then export
	target, _ := cfg.Target()
	prog.Log("Analyzing %s (min Pxy %d, min Px/Py %d)", target, cfg.MinPxy, cfg.MinPxOrPy)
	stats, err := driver.Run()
	if err != nil {
		return err
	}

	if cfg.RunValidation {
		if _, err := store.Validate(); err != nil {
			return err
		}
	}

	prog.Log("Done. %d tags (%.1f/s), %d with results, %d partners read, %d rows.",
		stats.Tags, prog.Rate(stats.Tags), stats.Productive, stats.Partners, stats.Rows)
	return nil
}
