package meta

import (
	"errors"
	"testing"

	"github.com/coregx/bregex/cache"
)

// TestDefaultConfigValues verifies DefaultConfig returns expected field values.
func TestDefaultConfigValues(t *testing.T) {
	c := DefaultConfig()

	if !c.EnablePrefilter {
		t.Error("EnablePrefilter should be true by default")
	}
	if !c.AdaptiveRanges {
		t.Error("AdaptiveRanges should be true by default")
	}
	if !c.AtomicLoops {
		t.Error("AtomicLoops should be true by default")
	}
	if c.MaxRecursionDepth != 100 {
		t.Errorf("MaxRecursionDepth = %d, want 100", c.MaxRecursionDepth)
	}
	if c.Cache != nil {
		t.Errorf("Cache = %v, want nil", c.Cache)
	}
	if c.patternCache() != cache.Default() {
		t.Error("nil Cache should select the process-wide cache")
	}
}

// TestDefaultConfigPassesValidation verifies DefaultConfig always validates.
func TestDefaultConfigPassesValidation(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

// TestConfigValidateMaxRecursionDepth tests MaxRecursionDepth validation boundaries.
func TestConfigValidateMaxRecursionDepth(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		valid bool
	}{
		{"zero is invalid", 0, false},
		{"below minimum (9)", 9, false},
		{"at minimum (10)", 10, true},
		{"typical (100)", 100, true},
		{"at maximum (1000)", 1_000, true},
		{"above maximum", 1_001, false},
		{"negative", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			c.MaxRecursionDepth = tt.depth
			err := c.Validate()

			if (err == nil) != tt.valid {
				t.Errorf("MaxRecursionDepth=%d: Validate() error = %v, wantValid %v",
					tt.depth, err, tt.valid)
			}
			if err == nil {
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error type = %T, want *ConfigError", err)
			}
			if cfgErr.Field != "MaxRecursionDepth" {
				t.Errorf("ConfigError.Field = %q, want %q", cfgErr.Field, "MaxRecursionDepth")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Error("ConfigError should wrap ErrInvalidConfig")
			}
		})
	}
}

// TestConfigErrorMessage verifies the error text.
func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Field: "MaxRecursionDepth", Message: "must be between 10 and 1,000"}
	want := "regexp: invalid config: MaxRecursionDepth: must be between 10 and 1,000"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
