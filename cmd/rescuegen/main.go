package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/rescue"
	"github.com/wippyai/rescue/gen"
	"github.com/wippyai/rescue/inspect"
)

func main() {
	var (
		dir         = flag.String("dir", "", "Directory to resolve package patterns against")
		output      = flag.String("o", "", "Generated file name (default "+gen.DefaultFilename+")")
		dryRun      = flag.Bool("dry-run", false, "Render generated source to stdout without writing files")
		list        = flag.Bool("list", false, "List annotated structs and exit")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	patterns := flag.Args()
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		rescue.SetLogger(logger)
		inspect.SetLogger(logger)
		gen.SetLogger(logger)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*dir, patterns); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*dir, *output, patterns, *dryRun, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(dir, output string, patterns []string, dryRun, listOnly bool) error {
	ctx := context.Background()

	if listOnly {
		pkgs, err := rescue.Inspect(ctx, dir, patterns...)
		printStructs(pkgs)
		return err
	}

	report, err := rescue.Generate(ctx, rescue.Options{
		Dir:      dir,
		Filename: output,
		DryRun:   dryRun,
	}, patterns...)
	if err != nil {
		return err
	}

	if report.StructCount() == 0 {
		fmt.Println("No annotated structs found.")
		return nil
	}

	for _, p := range report.Packages {
		if p.Source == nil {
			continue
		}
		if dryRun {
			fmt.Printf("--- %s ---\n%s", p.Path, p.Source)
			continue
		}
		fmt.Printf("%s: %d finalizer(s) -> %s\n", p.Path, len(p.Structs), p.File)
	}
	return nil
}

func printStructs(pkgs []*inspect.Package) {
	for _, p := range pkgs {
		printed := false
		for _, s := range p.Structs {
			if !printed {
				fmt.Printf("%s\n", p.Path)
				printed = true
			}
			fmt.Printf("  %s: %s -> %s\n", s.Name, s.Finalizer, s.FuncName)
			if s.CleanupName != "" {
				fmt.Printf("    cleanup %s\n", s.CleanupName)
			}
			for _, f := range s.Rescuable() {
				fmt.Printf("    %s %s\n", f.Name, f.TypeStr)
			}
		}
	}
}
