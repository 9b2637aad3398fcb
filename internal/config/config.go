// Package config loads boxscore-sync settings from the environment.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/pfrederiksen/boxscore-sync/internal/boxscore"
	"github.com/pfrederiksen/boxscore-sync/internal/logger"
	"github.com/pfrederiksen/boxscore-sync/internal/lookup"
)

const (
	EnvMasterToken = "TRUMEDIA_MASTER_TOKEN"
	EnvCredsPath   = "GOOGLE_CREDS_PATH"
	EnvSheetID     = "GOOGLE_SHEET_ID"
	EnvBaseURL     = "TRUMEDIA_BASE_URL"
	EnvPlayersPath = "TRUMEDIA_PLAYERS_PATH"
	EnvTokenTTL    = "TRUMEDIA_TOKEN_TTL"
	EnvHTTPTimeout = "HTTP_TIMEOUT"
	EnvGameURLs    = "GAME_URLS"
	EnvLogLevel    = "LOG_LEVEL"
)

var (
	// ErrMissingConfig is returned when required variables are unset.
	ErrMissingConfig = errors.New("missing required configuration")
	// ErrInvalidConfig is returned when a variable is set but unusable.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config stores runtime configuration for a sync run.
type Config struct {
	MasterToken string        `validate:"required"`
	CredsPath   string        `validate:"required_unless=DryRun true"`
	SheetID     string        `validate:"required_unless=DryRun true"`
	BaseURL     string        `validate:"required,url"`
	PlayersPath string        `validate:"required"`
	TokenTTL    time.Duration `validate:"gt=0"`
	HTTPTimeout time.Duration `validate:"gt=0"`
	GameURLs    []string      `validate:"min=1,dive,url"`
	LogLevel    logger.Level  `validate:"required"`
	DryRun      bool
}

// Overrides carries command-line values that take precedence over the environment.
type Overrides struct {
	GameURLs []string
	LogLevel string
	DryRun   bool
}

// envNames maps struct fields to the variables that set them.
var envNames = map[string]string{
	"MasterToken": EnvMasterToken,
	"CredsPath":   EnvCredsPath,
	"SheetID":     EnvSheetID,
	"BaseURL":     EnvBaseURL,
	"PlayersPath": EnvPlayersPath,
	"TokenTTL":    EnvTokenTTL,
	"HTTPTimeout": EnvHTTPTimeout,
	"GameURLs":    EnvGameURLs,
	"LogLevel":    EnvLogLevel,
}

var validate = validator.New()

// Load reads the environment, applies overrides and validates the result.
func Load(o Overrides) (Config, error) {
	tokenTTL, err := time.ParseDuration(getEnv(EnvTokenTTL, lookup.DefaultTokenTTL.String()))
	if err != nil {
		return Config{}, errors.Wrapf(ErrInvalidConfig, "parse %s: %v", EnvTokenTTL, err)
	}

	httpTimeout, err := time.ParseDuration(getEnv(EnvHTTPTimeout, "30s"))
	if err != nil {
		return Config{}, errors.Wrapf(ErrInvalidConfig, "parse %s: %v", EnvHTTPTimeout, err)
	}

	levelName := getEnv(EnvLogLevel, "info")
	if o.LogLevel != "" {
		levelName = o.LogLevel
	}
	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return Config{}, errors.Wrapf(ErrInvalidConfig, "%s: %v", EnvLogLevel, err)
	}

	gameURLs := splitList(os.Getenv(EnvGameURLs))
	if len(o.GameURLs) > 0 {
		gameURLs = o.GameURLs
	}
	if len(gameURLs) == 0 {
		gameURLs = append([]string(nil), boxscore.DefaultGameURLs...)
	}

	cfg := Config{
		MasterToken: strings.TrimSpace(os.Getenv(EnvMasterToken)),
		CredsPath:   strings.TrimSpace(os.Getenv(EnvCredsPath)),
		SheetID:     strings.TrimSpace(os.Getenv(EnvSheetID)),
		BaseURL:     strings.TrimSpace(getEnv(EnvBaseURL, lookup.DefaultBaseURL)),
		PlayersPath: strings.TrimSpace(getEnv(EnvPlayersPath, lookup.DefaultPlayersPath)),
		TokenTTL:    tokenTTL,
		HTTPTimeout: httpTimeout,
		GameURLs:    gameURLs,
		LogLevel:    level,
		DryRun:      o.DryRun,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required and well-formed values. All missing variables are
// reported together.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}

	missing := make([]string, 0)
	invalid := make([]string, 0)
	for _, fe := range verrs {
		field := fe.StructField()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		name := envNames[field]
		if name == "" {
			name = field
		}
		switch fe.Tag() {
		case "required", "required_unless":
			missing = append(missing, name)
		default:
			invalid = append(invalid, fmt.Sprintf("%s (%s)", name, fe.Tag()))
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.Wrapf(ErrMissingConfig, "environment variables not set: %s", strings.Join(missing, ", "))
	}
	sort.Strings(invalid)
	return errors.Wrapf(ErrInvalidConfig, "%s", strings.Join(invalid, ", "))
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
