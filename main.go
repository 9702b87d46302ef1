package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the real entry point. Using a separate function ensures all defers
// execute even on error paths, unlike os.Exit which skips deferred calls.
func run() error {
	verbose := flag.Bool("verbose", false, "print detailed progress")
	debugDB := flag.String("debug-db", "", "optional path to write a SQLite database of CFGs, summaries and distances")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kreachdist [flags] <file.ll> [debug]\n\n")
		fmt.Fprintf(os.Stderr, "Computes, for every reachable instruction in file.ll, the shortest\n")
		fmt.Fprintf(os.Stderr, "interprocedural distance to a call to klee_reach(), and writes the\n")
		fmt.Fprintf(os.Stderr, "result to <file>.dist.\n\n")
		fmt.Fprintf(os.Stderr, "The optional \"debug\" argument dumps parsed CFGs and summaries to stderr.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		return fmt.Errorf("LLVM file missing")
	}

	filePath := flag.Arg(0)
	debugMode := *verbose || (flag.NArg() > 1 && flag.Arg(1) == "debug")

	prog := NewProgress(debugMode)

	prog.Log("parsing %s", filePath)
	program, warnings, err := Parse(filePath, prog)
	if err != nil {
		return err
	}
	if warnings > 0 {
		prog.Log("%d unsupported jumping terminator(s) closed with no outgoing edge", warnings)
	}
	if debugMode {
		program.DebugDump(os.Stderr)
	}

	prog.Log("computing function summaries for %d functions", len(program.CFGs))
	summaries := SummarizeFunctions(program, prog)
	if debugMode {
		prog.Verbose("summaries: %s", formatSummaries(summaries))
	}

	prog.Log("computing interprocedural distances")
	dist := ComputeDistances(program, summaries, prog)

	outPath := strings.TrimSuffix(filePath, ".ll") + ".dist"
	if err := writeDistFile(outPath, dist); err != nil {
		return err
	}
	fmt.Printf("Distances wrote in %s\n", outPath)

	if *debugDB != "" {
		graph := BuildCallGraph(program)
		if err := WriteDebugDB(*debugDB, filePath, program, graph, summaries, dist, prog); err != nil {
			prog.Log("writing debug database: %v", err)
		}
	}

	totalBlocks := 0
	for _, cfg := range program.CFGs {
		totalBlocks += len(cfg.Blocks)
	}
	prog.Done(totalBlocks, len(program.CFGs))

	return nil
}

// writeDistFile writes one "<line>:<weight>" line per recorded distance, in
// the order the distance pass computed them.
func writeDistFile(path string, dist *Distances) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	for _, line := range dist.Lines() {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}
