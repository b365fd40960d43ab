package settings

import (
	"os"
	"path/filepath"
	"testing"

	pkgerrors "go-inventory-po/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envDefaults = EmailSettings{Host: "smtp.naver.com", Port: 465, User: "env@example.com", Pass: "env-pass"}

func TestReloadWithoutFileUsesDefaults(t *testing.T) {
	p := NewProvider(filepath.Join(t.TempDir(), "settings.json"), envDefaults)
	require.NoError(t, p.Reload())
	assert.Equal(t, envDefaults, p.Email())
}

func TestReloadOverlaysJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"email":{"user":"file@example.com","pass":"file-pass","port":587}}`), 0o600))

	p := NewProvider(path, envDefaults)
	require.NoError(t, p.Reload())

	got := p.Email()
	assert.Equal(t, "file@example.com", got.User)
	assert.Equal(t, "file-pass", got.Pass)
	assert.Equal(t, 587, got.Port)
	assert.Equal(t, "smtp.naver.com", got.Host)
}

func TestReloadOverlaysYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("email:\n  host: mail.example.com\n"), 0o600))

	p := NewProvider(path, envDefaults)
	require.NoError(t, p.Reload())
	assert.Equal(t, "mail.example.com", p.Email().Host)
	assert.Equal(t, "env@example.com", p.Email().User)
}

func TestReloadKeepsSnapshotOnMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	p := NewProvider(path, envDefaults)
	require.NoError(t, os.WriteFile(path, []byte(`{"email": [`), 0o600))

	require.Error(t, p.Reload())
	assert.Equal(t, envDefaults, p.Email())
}

func TestUpdateEmailPersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	p := NewProvider(path, envDefaults)

	update := EmailSettings{User: "po@example.com", Pass: "secret", Host: "smtp.example.com", Port: 465}
	require.NoError(t, p.UpdateEmail(update))
	assert.Equal(t, update, p.Email())

	fresh := NewProvider(path, EmailSettings{})
	require.NoError(t, fresh.Reload())
	assert.Equal(t, update, fresh.Email())
}

func TestUpdateEmailRejectsInvalid(t *testing.T) {
	p := NewProvider(filepath.Join(t.TempDir(), "settings.json"), envDefaults)
	err := p.UpdateEmail(EmailSettings{Host: "smtp.example.com", Port: 465})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, envDefaults, p.Email())
}

func TestMasked(t *testing.T) {
	assert.Equal(t, "********", envDefaults.Masked().Pass)
	assert.Equal(t, "", EmailSettings{}.Masked().Pass)
	assert.True(t, envDefaults.Configured())
	assert.False(t, EmailSettings{User: "x"}.Configured())
}
