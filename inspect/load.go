package inspect

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/wippyai/rescue/errors"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

// Load resolves the given patterns (typically a directory or "./...")
// into type-checked sources ready for Scan. Patterns are resolved
// relative to dir; an empty dir means the current directory.
//
// Packages that fail to load or type-check are reported as errors:
// generating finalizers against broken types would only compound the
// breakage.
func Load(ctx context.Context, dir string, patterns ...string) ([]*Source, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	cfg := &packages.Config{
		Mode:    loadMode,
		Context: ctx,
		Dir:     dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Load("load packages", err)
	}

	var sources []*Source
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, errors.Load(pkg.PkgPath+": "+pkg.Errors[0].Msg, nil)
		}
		if pkg.Types == nil || pkg.TypesInfo == nil {
			return nil, errors.Load(pkg.PkgPath+": no type information", nil)
		}

		dir := ""
		if len(pkg.CompiledGoFiles) > 0 {
			dir = filepath.Dir(pkg.CompiledGoFiles[0])
		}

		Logger().Debug("loaded package",
			zap.String("path", pkg.PkgPath),
			zap.Int("files", len(pkg.Syntax)))

		sources = append(sources, &Source{
			Fset:  pkg.Fset,
			Types: pkg.Types,
			Info:  pkg.TypesInfo,
			Files: pkg.Syntax,
			Dir:   dir,
		})
	}

	return sources, nil
}
