package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	t.Setenv("ATSFEED_CONFIG", "")
	if got := resolveConfigPath(""); got != "" {
		t.Errorf("no file, no env: got %q, want empty", got)
	}

	if err := os.WriteFile(filepath.Join(dir, defaultConfigFile), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := resolveConfigPath(""); got != defaultConfigFile {
		t.Errorf("default file: got %q, want %q", got, defaultConfigFile)
	}

	t.Setenv("ATSFEED_CONFIG", "/etc/atsfeed.yaml")
	if got := resolveConfigPath(""); got != "/etc/atsfeed.yaml" {
		t.Errorf("env: got %q", got)
	}
	if got := resolveConfigPath("explicit.yaml"); got != "explicit.yaml" {
		t.Errorf("explicit: got %q", got)
	}
}
