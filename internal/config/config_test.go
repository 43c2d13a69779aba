package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/takeout/Google Photos", "/takeout/Google Photos"},
		{"single trailing slash", "/takeout/", "/takeout"},
		{"multiple trailing slashes", "/takeout///", "/takeout"},
		{"root path", "/", "/"},
		{"relative path", "takeout", "takeout"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDirArg(tt.in))
		})
	}
}

func TestValidate_Mode(t *testing.T) {
	tests := []struct {
		name    string
		mode    MergeMode
		wantErr bool
	}{
		{"append is valid", ModeAppendOnly, false},
		{"overwrite is valid", ModeOverwrite, false},
		{"empty is invalid", "", true},
		{"unknown is invalid", "replace", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CheckOnly = true // skip path requirement
			cfg.Mode = tt.mode
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_RequiresInputDir(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate())

	cfg.InputDir = "/takeout"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "/takeout", cfg.ScriptDir, "script dir defaults to input dir")
}

func TestValidate_BatchSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InputDir = "/takeout"
	cfg.BatchSize = 0
	assert.Error(t, cfg.Validate())
}

func TestTimeoutFor(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 30*time.Second, cfg.TimeoutFor(0))
	assert.Equal(t, 230*time.Second, cfg.TimeoutFor(100))
}
