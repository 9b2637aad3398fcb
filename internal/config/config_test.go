package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/boxscore-sync/internal/boxscore"
	"github.com/pfrederiksen/boxscore-sync/internal/logger"
	"github.com/pfrederiksen/boxscore-sync/internal/lookup"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range envNames {
		t.Setenv(name, "")
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv(EnvMasterToken, "master")
	t.Setenv(EnvCredsPath, "/etc/creds.json")
	t.Setenv(EnvSheetID, "sheet-123")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.BaseURL != lookup.DefaultBaseURL {
		t.Fatalf("unexpected BaseURL: %q", cfg.BaseURL)
	}
	if cfg.PlayersPath != lookup.DefaultPlayersPath {
		t.Fatalf("unexpected PlayersPath: %q", cfg.PlayersPath)
	}
	if cfg.TokenTTL != lookup.DefaultTokenTTL {
		t.Fatalf("unexpected TokenTTL: %s", cfg.TokenTTL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("unexpected HTTPTimeout: %s", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != logger.LevelInfo {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel)
	}
	if strings.Join(cfg.GameURLs, ",") != strings.Join(boxscore.DefaultGameURLs, ",") {
		t.Fatalf("unexpected GameURLs: %v", cfg.GameURLs)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name        string
		set         map[string]string
		dryRun      bool
		wantMissing []string
		wantPresent []string
	}{
		{
			name:        "nothing set",
			wantMissing: []string{EnvMasterToken, EnvCredsPath, EnvSheetID},
		},
		{
			name:        "master token only",
			set:         map[string]string{EnvMasterToken: "m"},
			wantMissing: []string{EnvCredsPath, EnvSheetID},
			wantPresent: []string{EnvMasterToken},
		},
		{
			name:        "sheet id missing",
			set:         map[string]string{EnvMasterToken: "m", EnvCredsPath: "/c.json"},
			wantMissing: []string{EnvSheetID},
			wantPresent: []string{EnvCredsPath},
		},
		{
			name:        "dry run still needs master token",
			dryRun:      true,
			wantMissing: []string{EnvMasterToken},
			wantPresent: []string{EnvCredsPath, EnvSheetID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.set {
				t.Setenv(k, v)
			}

			_, err := Load(Overrides{DryRun: tt.dryRun})
			if !errors.Is(err, ErrMissingConfig) {
				t.Fatalf("expected ErrMissingConfig, got %v", err)
			}
			for _, name := range tt.wantMissing {
				if !strings.Contains(err.Error(), name) {
					t.Errorf("error %q should name %s", err, name)
				}
			}
			for _, name := range tt.wantPresent {
				if strings.Contains(err.Error(), name) {
					t.Errorf("error %q should not name %s", err, name)
				}
			}
		})
	}
}

func TestLoad_DryRunSkipsSheetSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvMasterToken, "master")

	cfg, err := Load(Overrides{DryRun: true})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.DryRun {
		t.Fatalf("expected DryRun=true")
	}
}

func TestLoad_Parsing(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv(EnvBaseURL, "https://lookup.example.com")
	t.Setenv(EnvPlayersPath, "/api/ncaa/ncaa-softball-players/0")
	t.Setenv(EnvTokenTTL, "90s")
	t.Setenv(EnvHTTPTimeout, "5s")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvGameURLs, " https://stats.ncaa.org/contests/1/individual_stats , ,https://stats.ncaa.org/contests/2/individual_stats")

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BaseURL != "https://lookup.example.com" {
		t.Fatalf("unexpected BaseURL: %q", cfg.BaseURL)
	}
	if cfg.PlayersPath != "/api/ncaa/ncaa-softball-players/0" {
		t.Fatalf("unexpected PlayersPath: %q", cfg.PlayersPath)
	}
	if cfg.TokenTTL != 90*time.Second {
		t.Fatalf("unexpected TokenTTL: %s", cfg.TokenTTL)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("unexpected HTTPTimeout: %s", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != logger.LevelDebug {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel)
	}
	if len(cfg.GameURLs) != 2 || cfg.GameURLs[1] != "https://stats.ncaa.org/contests/2/individual_stats" {
		t.Fatalf("unexpected GameURLs: %v", cfg.GameURLs)
	}
}

func TestLoad_OverridesWin(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv(EnvGameURLs, "https://stats.ncaa.org/contests/1/individual_stats")
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load(Overrides{
		GameURLs: []string{"https://stats.ncaa.org/contests/9/individual_stats"},
		LogLevel: "warn",
	})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.GameURLs) != 1 || cfg.GameURLs[0] != "https://stats.ncaa.org/contests/9/individual_stats" {
		t.Fatalf("unexpected GameURLs: %v", cfg.GameURLs)
	}
	if cfg.LogLevel != logger.LevelWarn {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad ttl", EnvTokenTTL, "soon"},
		{"zero ttl", EnvTokenTTL, "0s"},
		{"negative timeout", EnvHTTPTimeout, "-1s"},
		{"bad log level", EnvLogLevel, "chatty"},
		{"bad base url", EnvBaseURL, "not a url"},
		{"bad game url", EnvGameURLs, "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(Overrides{})
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig for %s=%q, got %v", tt.key, tt.value, err)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q should name %s", err, tt.key)
			}
		})
	}
}
