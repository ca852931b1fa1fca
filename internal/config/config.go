// Package config reads and validates preflight run configuration from
// JSON or YAML files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/opsgate/preflight/internal/types"
)

// namePattern matches valid check identifiers: alphanumeric, underscores, and hyphens.
var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Loader reads configuration files and validates them against the schema.
type Loader struct {
	validate *validator.Validate
}

// New creates a configuration Loader with the custom validators registered.
func New() *Loader {
	v := validator.New()

	_ = v.RegisterValidation("preflight_name", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})

	return &Loader{validate: v}
}

// Load reads, expands, and validates the configuration at path. The file
// format is chosen by extension: .yaml/.yml parse as YAML, everything else
// as JSON. A malformed or invalid file fails fast; no checks run without
// a valid configuration.
//
// Before parsing, an optional .env file next to the configuration is loaded
// so that ${VAR} placeholders in credential fields can be expanded without
// committing secrets to the config file itself.
func (l *Loader) Load(path string) (*types.Config, error) {
	loadDotenv(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}

	cfg := &types.Config{}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML in %q: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON in %q: %w", path, err)
		}
	}

	expandCredentials(cfg)

	if err := l.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate runs schema validation (struct tags) plus cross-field rules.
func (l *Loader) Validate(cfg *types.Config) error {
	if err := l.validate.Struct(cfg); err != nil {
		return formatValidationErrors(err)
	}

	// Check-name uniqueness across every category that feeds check names.
	seen := make(map[string]string)
	for _, e := range cfg.NetworkEndpoints {
		if prev, ok := seen[e.Name]; ok {
			return fmt.Errorf("duplicate name %q: first used by %s", e.Name, prev)
		}
		seen[e.Name] = "network endpoint"
	}
	for _, s := range cfg.Services {
		if prev, ok := seen[s.Name]; ok {
			return fmt.Errorf("duplicate name %q: first used by %s", s.Name, prev)
		}
		seen[s.Name] = "service"
	}
	for _, s := range cfg.SoftwareDependencies {
		if prev, ok := seen[s.Name]; ok {
			return fmt.Errorf("duplicate name %q: first used by %s", s.Name, prev)
		}
		seen[s.Name] = "software dependency"
	}

	return nil
}

// ValidateFile loads and validates a configuration file without running
// any checks. Returns nil if the file is valid.
func (l *Loader) ValidateFile(path string) error {
	_, err := l.Load(path)
	return err
}

// loadDotenv loads a .env file from dir when one exists. Best-effort:
// a missing or unreadable file is not an error.
func loadDotenv(dir string) {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err == nil {
		_ = godotenv.Load(path)
	}
}

// expandCredentials expands ${VAR} placeholders in remote-session
// credential fields from the process environment.
func expandCredentials(cfg *types.Config) {
	for i := range cfg.RemoteTests {
		cfg.RemoteTests[i].Username = os.ExpandEnv(cfg.RemoteTests[i].Username)
		cfg.RemoteTests[i].Password = os.ExpandEnv(cfg.RemoteTests[i].Password)
	}
}

// formatValidationErrors converts validator errors into user-friendly messages.
func formatValidationErrors(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var messages []string
	for _, fe := range validationErrors {
		messages = append(messages, formatFieldError(fe))
	}

	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}

// formatFieldError converts a single field validation error to a human-readable message.
func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "preflight_name":
		return fmt.Sprintf("%s must be alphanumeric with underscores and hyphens only", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
