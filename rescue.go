package rescue

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/rescue/errors"
	"github.com/wippyai/rescue/gen"
	"github.com/wippyai/rescue/inspect"
)

// Options configures a Generate run.
type Options struct {
	// Dir is the directory patterns are resolved against. Empty means
	// the current directory.
	Dir string

	// Filename overrides the generated file name within each package.
	Filename string

	// DryRun renders the generated source without writing any files.
	DryRun bool
}

// PackageResult describes the outcome for a single loaded package.
type PackageResult struct {
	// Path is the package import path.
	Path string

	// Structs lists the structs that received a finalizer, sorted by name.
	Structs []string

	// File is the written file path. Empty on dry runs and for packages
	// with nothing to generate.
	File string

	// Source is the rendered file content. Nil when the package has
	// nothing to generate.
	Source []byte
}

// Report summarizes a Generate run across all loaded packages.
type Report struct {
	Packages []PackageResult
}

// Files returns the paths of every written file.
func (r *Report) Files() []string {
	var paths []string
	for _, p := range r.Packages {
		if p.File != "" {
			paths = append(paths, p.File)
		}
	}
	return paths
}

// StructCount returns the total number of finalized structs.
func (r *Report) StructCount() int {
	n := 0
	for _, p := range r.Packages {
		n += len(p.Structs)
	}
	return n
}

// Inspect loads the packages matched by patterns, resolved relative
// to dir, and runs the scan and definition-time checks. Package models
// are returned even when findings exist so callers can display partial
// results; the returned error is a *errors.CheckError when any
// definition is invalid.
func Inspect(ctx context.Context, dir string, patterns ...string) ([]*inspect.Package, error) {
	sources, err := inspect.Load(ctx, dir, patterns...)
	if err != nil {
		return nil, err
	}

	var pkgs []*inspect.Package
	var findings []errors.Finding
	for _, src := range sources {
		p, fs := inspect.Scan(src)
		fs = append(fs, inspect.Check(src, p)...)
		pkgs = append(pkgs, p)
		findings = append(findings, fs...)
	}

	if len(findings) > 0 {
		return pkgs, errors.NewCheckError(findings)
	}
	return pkgs, nil
}

// Generate loads the packages matched by patterns, verifies every
// annotated struct, and writes one generated file per package that has
// at least one finalizer to emit. No file is written unless every
// package passes the definition-time checks.
func Generate(ctx context.Context, opts Options, patterns ...string) (*Report, error) {
	pkgs, err := Inspect(ctx, opts.Dir, patterns...)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, p := range pkgs {
		res := PackageResult{Path: p.Path}
		for _, s := range p.Structs {
			if gen.Eligible(s) {
				res.Structs = append(res.Structs, s.Name)
			}
		}

		content, err := gen.File(p)
		if err != nil {
			return nil, err
		}
		res.Source = content

		if content != nil && !opts.DryRun {
			path, err := gen.Write(p, gen.Options{Filename: opts.Filename})
			if err != nil {
				return nil, err
			}
			res.File = path
		}

		report.Packages = append(report.Packages, res)
	}

	Logger().Info("generation complete",
		zap.Int("packages", len(report.Packages)),
		zap.Int("structs", report.StructCount()),
		zap.Int("files", len(report.Files())),
		zap.Bool("dry_run", opts.DryRun))

	return report, nil
}
