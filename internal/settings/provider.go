// Package settings serves runtime-editable settings. Environment values are
// the defaults and the settings file, when present, overrides them.
package settings

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	pkgerrors "go-inventory-po/pkg/errors"
	"go-inventory-po/pkg/validator"

	"gopkg.in/yaml.v3"
)

type EmailSettings struct {
	User     string `json:"user" yaml:"user" validate:"required,email"`
	Pass     string `json:"pass" yaml:"pass" validate:"required"`
	Host     string `json:"host" yaml:"host" validate:"required"`
	Port     int    `json:"port" yaml:"port" validate:"required,gt=0,lte=65535"`
	FromName string `json:"fromName,omitempty" yaml:"fromName,omitempty"`
}

// Configured reports whether credentials are present.
func (e EmailSettings) Configured() bool {
	return e.User != "" && e.Pass != ""
}

// Masked returns a copy safe to show to clients.
func (e EmailSettings) Masked() EmailSettings {
	if e.Pass != "" {
		e.Pass = "********"
	}
	return e
}

type Settings struct {
	Email EmailSettings `json:"email" yaml:"email"`
}

type Provider struct {
	path     string
	defaults Settings

	mu      sync.RWMutex
	current Settings
}

// NewProvider returns a provider holding only the defaults; call Reload to apply the file.
func NewProvider(path string, defaults EmailSettings) *Provider {
	base := Settings{Email: defaults}
	return &Provider{path: path, defaults: base, current: base}
}

func (p *Provider) Path() string {
	return p.path
}

func (p *Provider) Email() EmailSettings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current.Email
}

// Reload re-reads the settings file. A missing file resets to the defaults; a
// malformed one leaves the current snapshot untouched.
func (p *Provider) Reload() error {
	next := p.defaults

	data, err := os.ReadFile(p.path)
	switch {
	case stdErrors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read settings file: %w", err)
	default:
		var fromFile Settings
		// JSON is a subset of YAML, so one decoder serves both formats.
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return fmt.Errorf("parse settings file %s: %w", p.path, err)
		}
		next.Email = overlay(next.Email, fromFile.Email)
	}

	p.mu.Lock()
	p.current = next
	p.mu.Unlock()
	return nil
}

// UpdateEmail validates, persists and then publishes new email settings.
func (p *Provider) UpdateEmail(email EmailSettings) error {
	if errs := validator.ValidateStruct(&email); len(errs) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, validator.Summary(errs)).WithDetails(errs)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.current
	next.Email = email
	if err := p.write(next); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to save settings")
	}
	p.current = next
	return nil
}

func (p *Provider) write(s Settings) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(p.path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(p.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p.path)
}

func overlay(base, override EmailSettings) EmailSettings {
	if override.User != "" {
		base.User = override.User
	}
	if override.Pass != "" {
		base.Pass = override.Pass
	}
	if override.Host != "" {
		base.Host = override.Host
	}
	if override.Port != 0 {
		base.Port = override.Port
	}
	if override.FromName != "" {
		base.FromName = override.FromName
	}
	return base
}
