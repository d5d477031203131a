package resolve

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mosaicnetworks/reflector/src/common"
)

func touch(t *testing.T, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte{}, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	touch(t, filepath.Join(second, "emu", "fcadefbneo.exe"))
	touch(t, filepath.Join(second, "lua", "training.lua"))
	touch(t, filepath.Join(first, "lua", "training.lua"))

	r := NewResolverWithRoots([]string{first, second}, common.NewTestEntry(t, common.TestLogLevel))

	if got, want := r.Resolve("emu/fcadefbneo.exe"), filepath.Join(second, "emu", "fcadefbneo.exe"); got != want {
		t.Fatalf("Resolve should return %s, not %s", want, got)
	}

	if got, want := r.Resolve("lua/training.lua"), filepath.Join(first, "lua", "training.lua"); got != want {
		t.Fatalf("first root should win: want %s, got %s", want, got)
	}
}

func TestResolveFallsBackToInput(t *testing.T) {
	r := NewResolverWithRoots([]string{t.TempDir()}, common.NewTestEntry(t, common.TestLogLevel))

	if got := r.Resolve("missing/emulator"); got != "missing/emulator" {
		t.Fatalf("unresolved paths should be returned as-is, got %s", got)
	}

	abs := filepath.Join(t.TempDir(), "not-there")
	if got := r.Resolve(abs); got != abs {
		t.Fatalf("absolute paths should be returned as-is, got %s", got)
	}

	if got := r.Resolve(""); got != "" {
		t.Fatalf("empty path should stay empty, got %s", got)
	}
}

func TestAncestors(t *testing.T) {
	got := ancestors(filepath.FromSlash("/a/b"))
	want := []string{filepath.FromSlash("/a/b"), filepath.FromSlash("/a"), filepath.FromSlash("/")}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ancestors should be %v, not %v", want, got)
	}
}

func TestNewResolverIncludesResourceDirs(t *testing.T) {
	res := t.TempDir()
	app := t.TempDir()

	r := NewResolver(res, app, common.NewTestEntry(t, common.TestLogLevel))
	roots := r.Roots()

	if len(roots) < 2 || roots[len(roots)-2] != res || roots[len(roots)-1] != app {
		t.Fatalf("resource and app-data dirs should be searched last, got %v", roots)
	}
}
