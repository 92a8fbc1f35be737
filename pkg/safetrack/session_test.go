package safetrack

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
	"liyu1981.xyz/safetrack-monitor-service/pkg/kv"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
	_ "liyu1981.xyz/safetrack-monitor-service/pkg/testing"
)

func TestSessionLoginLogout(t *testing.T) {
	var buf bytes.Buffer
	common.SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	store := kv.NewMemoryStore()
	session := NewSession(store, SessionOptions{AdminUser: "admin", AdminPass: "secret"})

	assert.False(t, session.IsAuthenticated())
	assert.ErrorIs(t, session.Login("admin", "wrong"), ErrInvalidCredentials)
	assert.False(t, session.IsAuthenticated())

	require.NoError(t, session.Login("admin", "secret"))
	assert.True(t, session.IsAuthenticated())

	value, ok, err := store.Get(common.StorageKeyAuth)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", value)

	require.NoError(t, session.Logout())
	assert.False(t, session.IsAuthenticated())

	logs := ParseLogs(&buf)
	rejected := findLog(logs, "Login rejected")
	require.NotNil(t, rejected)
	assert.Equal(t, "session", rejected["category"])
}

func TestSessionEdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	t.Run("only the exact sentinel authenticates", func(t *testing.T) {
		store := kv.NewMemoryStore()
		session := NewSession(store, SessionOptions{AdminUser: "admin", AdminPass: "secret"})
		require.NoError(t, store.Set(common.StorageKeyAuth, "TRUE"))
		assert.False(t, session.IsAuthenticated())
	})

	t.Run("empty admin user disables login", func(t *testing.T) {
		session := NewSession(kv.NewMemoryStore(), SessionOptions{})
		assert.ErrorIs(t, session.Login("", ""), ErrInvalidCredentials)
	})

	t.Run("credential check leaves the flag alone", func(t *testing.T) {
		session := NewSession(kv.NewMemoryStore(), SessionOptions{AdminUser: "admin", AdminPass: "secret"})
		assert.True(t, session.CheckCredentials("admin", "secret"))
		assert.False(t, session.CheckCredentials("admin", "nope"))
		assert.False(t, session.IsAuthenticated())

		assert.False(t, NewSession(kv.NewMemoryStore(), SessionOptions{}).CheckCredentials("", ""))
	})

	t.Run("storage failure", func(t *testing.T) {
		store := kv.NewMemoryStore()
		store.Broken = true
		session := NewSession(store, SessionOptions{AdminUser: "admin", AdminPass: "secret"})
		assert.ErrorIs(t, session.Login("admin", "secret"), kv.ErrUnavailable)
		assert.False(t, session.IsAuthenticated())
	})
}

func TestSessionTheme(t *testing.T) {
	common.SetTestLoggerNop()

	store := kv.NewMemoryStore()
	session := NewSession(store, SessionOptions{})

	assert.Equal(t, models.ThemeSystem, session.Theme())

	require.NoError(t, session.SetTheme(models.ThemeDark))
	assert.Equal(t, models.ThemeDark, session.Theme())

	assert.ErrorIs(t, session.SetTheme("purple"), ErrInvalidTheme)
	assert.Equal(t, models.ThemeDark, session.Theme())

	require.NoError(t, store.Set(common.StorageKeyTheme, "neon"))
	assert.Equal(t, models.ThemeSystem, session.Theme())
}
