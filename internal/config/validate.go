package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Parumezan/toxidoc/internal/entity"
)

var (
	// ErrEmptySnapshot indicates a missing snapshot path
	ErrEmptySnapshot = errors.New("empty snapshot path")

	// ErrNoSourcePaths indicates nothing to scan
	ErrNoSourcePaths = errors.New("no source paths")

	// ErrInvalidExtension indicates a header extension without a leading dot
	ErrInvalidExtension = errors.New("invalid header extension")

	// ErrInvalidLanguage indicates an unsupported frontend language
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrInvalidKind indicates an unknown kind name in types_blacklist
	ErrInvalidKind = errors.New("invalid kind name")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid workers")

	// ErrInvalidMinCoverage indicates a threshold outside 0..100
	ErrInvalidMinCoverage = errors.New("invalid min_coverage")

	// ErrInvalidHistory indicates invalid history settings
	ErrInvalidHistory = errors.New("invalid history settings")
)

// Validate checks that the configuration is valid and complete.
// Every problem is reported, each wrapping its sentinel.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Snapshot) == "" {
		errs = append(errs, fmt.Errorf("%w: snapshot is required", ErrEmptySnapshot))
	}

	if len(cfg.SourcePaths) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one source path required", ErrNoSourcePaths))
	}

	for _, ext := range cfg.HeaderExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, fmt.Errorf("%w: must start with '.', got '%s'", ErrInvalidExtension, ext))
		}
	}

	language := strings.ToLower(cfg.Language)
	if language != "cpp" && language != "c" {
		errs = append(errs, fmt.Errorf("%w: must be 'cpp' or 'c', got '%s'", ErrInvalidLanguage, cfg.Language))
	}

	for _, name := range cfg.TypesBlacklist {
		if _, ok := entity.ParseKind(strings.TrimSpace(name)); !ok {
			errs = append(errs, fmt.Errorf("%w: %s (valid: %s)", ErrInvalidKind, name, strings.Join(entity.KindNames(), ", ")))
		}
	}

	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	if cfg.MinCoverage != nil && (*cfg.MinCoverage < 0 || *cfg.MinCoverage > 100) {
		errs = append(errs, fmt.Errorf("%w: must be between 0 and 100, got %.2f", ErrInvalidMinCoverage, *cfg.MinCoverage))
	}

	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		errs = append(errs, fmt.Errorf("%w: path is required when history is enabled", ErrInvalidHistory))
	}
	if cfg.History.Keep < 0 {
		errs = append(errs, fmt.Errorf("%w: keep cannot be negative, got %d", ErrInvalidHistory, cfg.History.Keep))
	}

	return joinErrors(errs)
}

// joinErrors combines multiple errors into a single error with clear formatting.
// Every error stays wrapped, so errors.Is matches any of the sentinels.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	args := make([]any, len(errs))
	for i, err := range errs {
		args[i] = err
	}
	return fmt.Errorf("validation failed:"+strings.Repeat("\n  - %w", len(errs)), args...)
}
