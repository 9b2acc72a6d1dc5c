package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/salesdash/internal/utils"
)

func TestSafeWriteFileReplaces(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.csv")
	if err := utils.SafeWriteFile(p, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := utils.SafeWriteFile(p, []byte("two")); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "two" {
		t.Fatalf("got %q", b)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestEnsureDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a", "b")
	if err := utils.EnsureDir(p); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(p); err != nil || !info.IsDir() {
		t.Fatalf("dir not created: %v", err)
	}
	if err := utils.EnsureDir(""); err != nil {
		t.Fatalf("empty dir: %v", err)
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"rows": 3})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "{\n  \"rows\": 3\n}" {
		t.Fatalf("unexpected json: %s", b)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := utils.ExpandHome("~/data"); got != filepath.Join(home, "data") {
		t.Errorf("got %q", got)
	}
	if got := utils.ExpandHome("/abs/~/x"); got != "/abs/~/x" {
		t.Errorf("got %q", got)
	}
	if got := utils.ExpandHome("~"); !strings.HasPrefix(got, home) {
		t.Errorf("got %q", got)
	}
}
