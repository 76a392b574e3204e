package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docfetch.yaml")
	data := `
portal:
  limit: 5
browser:
  remote: http://chrome:9222
  navigation_timeout: 45s
  resource_blocking: [images, fonts]
download:
  dir: /srv/docs
filesearch:
  manifest: /srv/stores.db
  project: my-project
  bucket: docs-bucket
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Portal.Limit != 5 {
		t.Errorf("limit = %d", cfg.Portal.Limit)
	}
	if cfg.Portal.BaseURL != "https://online.budstandart.com" {
		t.Errorf("base url default = %q", cfg.Portal.BaseURL)
	}
	if cfg.Browser.Remote != "http://chrome:9222" {
		t.Errorf("remote = %q", cfg.Browser.Remote)
	}
	if cfg.Browser.NavigationTimeout != 45*time.Second {
		t.Errorf("navigation timeout = %s", cfg.Browser.NavigationTimeout)
	}
	if len(cfg.Browser.ResourceBlocking) != 2 {
		t.Errorf("resource blocking = %v", cfg.Browser.ResourceBlocking)
	}
	if cfg.Browser.NavigationRate != 2 {
		t.Errorf("rate default = %v", cfg.Browser.NavigationRate)
	}
	if cfg.Download.Dir != "/srv/docs" || cfg.Download.Timeout != 2*time.Minute {
		t.Errorf("download = %+v", cfg.Download)
	}
	if cfg.FileSearch.Manifest != "/srv/stores.db" || cfg.FileSearch.Location != "us-central1" {
		t.Errorf("filesearch = %+v", cfg.FileSearch)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("portal: [unterminated"), 0o644)
	if _, err := LoadFile(path); err == nil {
		t.Error("invalid yaml should fail")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Portal.Limit != 20 || cfg.Browser.NavigationTimeout != 30*time.Second || cfg.LogLevel != "info" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.FileSearch.Manifest == "" {
		t.Error("manifest default is empty")
	}
}
