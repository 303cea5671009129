package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile_MissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dashboard.TopN != 10 || cfg.Dashboard.DefaultPeriod != "monthly" {
		t.Errorf("defaults = %+v", cfg.Dashboard)
	}
	if cfg.General.Currency != "£" {
		t.Errorf("Currency = %q, want £", cfg.General.Currency)
	}
}

func TestSaveFile_RoundTripKeepsOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.Server.Addr = ":9999"
	cfg.Dashboard.TopN = 25
	cfg.Appearance.Theme = "tokyo-night"

	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Server.Addr != ":9999" || got.Dashboard.TopN != 25 || got.Appearance.Theme != "tokyo-night" {
		t.Errorf("loaded = %+v", got)
	}
}

func TestLoadFile_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[dashboard]\ntop_n = 5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dashboard.TopN != 5 {
		t.Errorf("TopN = %d, want 5", cfg.Dashboard.TopN)
	}
	if cfg.Server.CacheTTLSeconds != 300 {
		t.Errorf("CacheTTLSeconds = %d, want default 300", cfg.Server.CacheTTLSeconds)
	}
}

func TestLoadFile_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[dashboard\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestDBPath_Precedence(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv(EnvDB, "")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DBPath(cfg); got != filepath.Join("/data", "xercost", "xercost.db") {
		t.Errorf("default DBPath = %q", got)
	}

	cfg.General.DBPath = "/cfg/x.db"
	if got := DBPath(cfg); got != "/cfg/x.db" {
		t.Errorf("config DBPath = %q", got)
	}

	t.Setenv(EnvDB, "/env/x.db")
	if got := DBPath(cfg); got != "/env/x.db" {
		t.Errorf("env DBPath = %q", got)
	}
}

func TestServerURL_EnvWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Client.BaseURL = "http://cfg"
	t.Setenv(EnvServerURL, "")
	if got := ServerURL(cfg); got != "http://cfg" {
		t.Errorf("ServerURL = %q", got)
	}
	t.Setenv(EnvServerURL, "http://env")
	if got := ServerURL(cfg); got != "http://env" {
		t.Errorf("ServerURL = %q", got)
	}
}
