package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/hazyhaar/docfetch/acquire/model"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestResolveCredentials(t *testing.T) {
	keyring.MockInit()
	if err := keyring.Set(keyringService, "kr@example.com", "from-keyring"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name            string
		email, password string
		env             map[string]string
		want            model.Credentials
		wantErr         bool
	}{
		{
			name: "flags win", email: "flag@example.com", password: "flag-pw",
			env:  map[string]string{envEmail: "env@example.com", envPassword: "env-pw"},
			want: model.Credentials{Identifier: "flag@example.com", Secret: "flag-pw"},
		},
		{
			name: "environment",
			env:  map[string]string{envEmail: "env@example.com", envPassword: "env-pw"},
			want: model.Credentials{Identifier: "env@example.com", Secret: "env-pw"},
		},
		{
			name: "keyring", email: "kr@example.com",
			want: model.Credentials{Identifier: "kr@example.com", Secret: "from-keyring"},
		},
		{name: "no email", password: "pw", wantErr: true},
		{name: "no password anywhere", email: "nobody@example.com", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveCredentials(tt.email, tt.password, env(tt.env))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("got %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// execute runs the CLI with a config pointing the manifest into a temp dir.
func execute(t *testing.T, manifest string, stdin string, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "docfetch.yaml")
	yaml := "log_level: error\nfilesearch:\n  manifest: " + manifest + "\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestStoreCommands(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "stores.json")

	out, err := execute(t, manifest, "", "store", "list")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("empty list: %q", out)
	}

	out, err = execute(t, manifest, "", "store", "create", "dbn")
	if err != nil {
		t.Fatal(err)
	}
	var st map[string]any
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("create output %q: %v", out, err)
	}
	if st["name"] != "dbn" {
		t.Errorf("created: %v", st)
	}

	out, err = execute(t, manifest, "", "store", "files", "dbn")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("files: %q", out)
	}

	if _, err := execute(t, manifest, "", "store", "delete", "dbn"); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, manifest, "", "store", "files", "dbn"); err == nil {
		t.Error("files of deleted store succeeded")
	}
}

func TestStoreCommands_SQLiteManifest(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "stores.db")

	if _, err := execute(t, manifest, "", "store", "create", "dbn"); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, manifest, "", "store", "list")
	if err != nil {
		t.Fatal(err)
	}
	var stores []map[string]any
	if err := json.Unmarshal([]byte(out), &stores); err != nil {
		t.Fatal(err)
	}
	if len(stores) != 1 || stores[0]["name"] != "dbn" {
		t.Errorf("stores: %v", stores)
	}
}

func TestStoreUpload_RequiresStore(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "stores.json")
	if _, err := execute(t, manifest, "", "store", "upload", "a.pdf"); err == nil || !strings.Contains(err.Error(), "--store") {
		t.Errorf("err = %v", err)
	}
}

func TestCredentialsCommands(t *testing.T) {
	keyring.MockInit()
	manifest := filepath.Join(t.TempDir(), "stores.json")

	if _, err := execute(t, manifest, "s3cret\n", "credentials", "set", "--email", "user@example.com"); err != nil {
		t.Fatal(err)
	}
	pw, err := keyring.Get(keyringService, "user@example.com")
	if err != nil || pw != "s3cret" {
		t.Fatalf("keyring = %q, %v", pw, err)
	}

	if _, err := execute(t, manifest, "", "credentials", "delete", "--email", "user@example.com"); err != nil {
		t.Fatal(err)
	}
	if _, err := keyring.Get(keyringService, "user@example.com"); err == nil {
		t.Error("password still stored")
	}
}

func TestPortalCommands_NeedCredentials(t *testing.T) {
	keyring.MockInit()
	t.Setenv(envEmail, "")
	t.Setenv(envPassword, "")
	manifest := filepath.Join(t.TempDir(), "stores.json")

	_, err := execute(t, manifest, "", "search", "ДБН")
	if err == nil || !strings.Contains(err.Error(), "email") {
		t.Errorf("err = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]string{"debug": "DEBUG", "warn": "WARN", "error": "ERROR", "": "INFO", "bogus": "INFO"} {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
