package rescue

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/rescue/errors"
	"github.com/wippyai/rescue/gen"
)

// writeModule lays out a throwaway module so Generate can load it the
// way real callers do, through the build system.
func writeModule(t *testing.T, source string) string {
	t.Helper()

	dir := t.TempDir()
	gomod := "module example.com/sessions\n\ngo 1.25\n"
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(gomod), 0o644); err != nil {
		t.Fatalf("write go.mod: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.go"), []byte(source), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return dir
}

const sessionModule = `package sessions

type Buffer struct{ n int }

func (b *Buffer) Drop() {}

type File struct{ name string }

func (f *File) Close() error { return nil }

type Report struct{ code int }

//rescue:func handoff
type Session struct {
	buf    *Buffer
	n      int
	file   *File       //rescue:field
	sender chan Report //rescue:field
}

func (s *Session) cleanup() error { return nil }

func handoff(file *File, sender chan Report) {}
`

func TestGenerate(t *testing.T) {
	dir := writeModule(t, sessionModule)

	report, err := Generate(context.Background(), Options{Dir: dir}, "./...")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(report.Packages) != 1 {
		t.Fatalf("got %d packages, want 1", len(report.Packages))
	}
	p := report.Packages[0]
	if len(p.Structs) != 1 || p.Structs[0] != "Session" {
		t.Errorf("structs = %v, want [Session]", p.Structs)
	}
	if p.File != filepath.Join(dir, gen.DefaultFilename) {
		t.Errorf("file = %q", p.File)
	}

	content, err := os.ReadFile(p.File)
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	for _, want := range []string{
		"// Code generated by rescuegen. DO NOT EDIT.",
		"package sessions",
		"func (s *Session) Destroy() error {",
		"handoff(file, sender)",
	} {
		if !strings.Contains(string(content), want) {
			t.Errorf("generated file missing %q:\n%s", want, content)
		}
	}

	if report.StructCount() != 1 {
		t.Errorf("StructCount = %d, want 1", report.StructCount())
	}
	if files := report.Files(); len(files) != 1 || files[0] != p.File {
		t.Errorf("Files = %v", files)
	}
}

func TestGenerate_DryRun(t *testing.T) {
	dir := writeModule(t, sessionModule)

	report, err := Generate(context.Background(), Options{Dir: dir, DryRun: true}, "./...")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	p := report.Packages[0]
	if p.File != "" {
		t.Errorf("dry run wrote %q", p.File)
	}
	if len(p.Source) == 0 {
		t.Error("dry run should still render the source")
	}
	if _, err := os.Stat(filepath.Join(dir, gen.DefaultFilename)); !os.IsNotExist(err) {
		t.Error("dry run must not write files")
	}
}

func TestGenerate_CustomFilename(t *testing.T) {
	dir := writeModule(t, sessionModule)

	report, err := Generate(context.Background(), Options{Dir: dir, Filename: "finalizers.go"}, "./...")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := filepath.Base(report.Packages[0].File); got != "finalizers.go" {
		t.Errorf("file = %q", got)
	}
}

func TestGenerate_CheckFailureWritesNothing(t *testing.T) {
	dir := writeModule(t, `package sessions

//rescue:func keep
type Box struct {
	a int    //rescue:field
	b string //rescue:field
}

func keep(a int) {}
`)

	_, err := Generate(context.Background(), Options{Dir: dir}, "./...")
	if err == nil {
		t.Fatal("expected a check error")
	}
	ce, ok := err.(*errors.CheckError)
	if !ok {
		t.Fatalf("got %T, want *errors.CheckError", err)
	}
	if len(ce.Findings) != 1 {
		t.Errorf("got %d findings, want 1", len(ce.Findings))
	}
	if ce.Findings[0].Struct != "Box" {
		t.Errorf("finding struct = %q", ce.Findings[0].Struct)
	}

	if _, err := os.Stat(filepath.Join(dir, gen.DefaultFilename)); !os.IsNotExist(err) {
		t.Error("no file may be written when checks fail")
	}
}

func TestGenerate_NothingToGenerate(t *testing.T) {
	dir := writeModule(t, `package sessions

type Plain struct{ x int }
`)

	report, err := Generate(context.Background(), Options{Dir: dir}, "./...")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if n := len(report.Files()); n != 0 {
		t.Errorf("wrote %d files, want 0", n)
	}
	if report.StructCount() != 0 {
		t.Errorf("StructCount = %d, want 0", report.StructCount())
	}
}

func TestGenerate_BrokenSource(t *testing.T) {
	dir := writeModule(t, `package sessions

func broken() { return 1 }
`)

	_, err := Generate(context.Background(), Options{Dir: dir}, "./...")
	if err == nil {
		t.Fatal("expected a load error for broken source")
	}
}

func TestInspect_ReturnsPackagesWithFindings(t *testing.T) {
	dir := writeModule(t, `package sessions

//rescue:func missing
type Box struct {
	a int //rescue:field
}
`)

	pkgs, err := Inspect(context.Background(), dir, "./...")
	if err == nil {
		t.Fatal("expected a check error")
	}
	if len(pkgs) != 1 {
		t.Fatalf("got %d packages, want 1", len(pkgs))
	}
	if len(pkgs[0].Structs) != 1 || pkgs[0].Structs[0].Name != "Box" {
		t.Error("package model should survive check failures")
	}
}
