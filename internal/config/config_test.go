package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Channel.Address != "127.0.0.1" {
		t.Errorf("Channel.Address = %q, want 127.0.0.1", cfg.Channel.Address)
	}
	if cfg.Channel.Port != 9320 {
		t.Errorf("Channel.Port = %d, want 9320", cfg.Channel.Port)
	}
	if cfg.Brain.BatchWindowMS != 10_000 {
		t.Errorf("Brain.BatchWindowMS = %d, want 10000", cfg.Brain.BatchWindowMS)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestFindConfigExplicitMissing(t *testing.T) {
	if _, err := FindConfig("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestFindConfigSearchPaths(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("config.yaml", []byte("data_dir: /tmp\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfig("")
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if found != "config.yaml" {
		t.Errorf("found = %q, want config.yaml", found)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]bool{
		"trace": true, "debug": true, "info": true, "": true,
		"warn": true, "warning": true, "error": true, "bogus": false,
	}
	for s, ok := range cases {
		_, err := ParseLogLevel(s)
		if (err == nil) != ok {
			t.Errorf("ParseLogLevel(%q) err=%v, want ok=%v", s, err, ok)
		}
	}
}
