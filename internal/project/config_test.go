package project

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[normalize]
width = 100
implicit-none = true
merge-decls = true

[files]
extensions = [".f90", ".f"]
include = ["src/**/*.f90"]
exclude = ["**/third_party/**"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Normalize.Width != 100 || !cfg.Normalize.ImplicitNone || !cfg.Normalize.MergeDecls {
		t.Errorf("normalize = %+v", cfg.Normalize)
	}
	if !reflect.DeepEqual(cfg.Files.Extensions, []string{".f90", ".f"}) {
		t.Errorf("extensions = %v", cfg.Files.Extensions)
	}
	if len(cfg.Files.Include) != 1 || len(cfg.Files.Exclude) != 1 {
		t.Errorf("globs = %+v", cfg.Files)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[normalize]\nimplicit-none = true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Normalize.ImplicitNone {
		t.Error("implicit-none not picked up")
	}
	// незаданные ключи остаются на умолчаниях
	if cfg.Normalize.Width != 80 {
		t.Errorf("width = %d, want default 80", cfg.Normalize.Width)
	}
	if !reflect.DeepEqual(cfg.Files.Extensions, Default().Files.Extensions) {
		t.Errorf("extensions = %v", cfg.Files.Extensions)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[normalize]\nwdith = 90\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("err = %v, want unknown-key error", err)
	}
}

func TestLoadRejectsBadWidth(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[normalize]\nwidth = 0\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "must be positive") {
		t.Errorf("err = %v, want width error", err)
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[normalize]\nwidth = 90\n")
	nested := filepath.Join(root, "src", "solvers")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	path, ok, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !ok {
		t.Fatal("config not found from nested dir")
	}
	if filepath.Dir(path) != root {
		t.Errorf("found %s, want file under %s", path, root)
	}

	cfg, cfgPath, err := LoadFromDir(nested)
	if err != nil {
		t.Fatalf("load from dir: %v", err)
	}
	if cfgPath != path || cfg.Normalize.Width != 90 {
		t.Errorf("got path %s width %d", cfgPath, cfg.Normalize.Width)
	}
}

func TestLoadFromDirWithoutConfig(t *testing.T) {
	cfg, path, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}
