package safetrack

import (
	"crypto/subtle"
	"errors"

	"go.uber.org/zap"
	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
	"liyu1981.xyz/safetrack-monitor-service/pkg/kv"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
)

const authSentinel = "true"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidTheme       = errors.New("invalid theme")
)

type SessionOptions struct {
	AdminUser string
	AdminPass string
}

// Session keeps the dashboard's authentication flag and theme preference in
// the shared store. The flag is a local gate, not an identity.
type Session struct {
	store  kv.Store
	opts   SessionOptions
	logger *zap.Logger
}

func NewSession(store kv.Store, opts SessionOptions) *Session {
	return &Session{
		store:  store,
		opts:   opts,
		logger: common.GetCoreLogger(common.LoggerCategorySession),
	}
}

// CheckCredentials compares against the configured admin account without
// touching the stored flag. It is always false when no admin user is set.
func (s *Session) CheckCredentials(user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.opts.AdminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.opts.AdminPass)) == 1
	return s.opts.AdminUser != "" && userOK && passOK
}

func (s *Session) Login(user, pass string) error {
	if !s.CheckCredentials(user, pass) {
		s.logger.Warn("Login rejected", zap.String("user", user))
		return ErrInvalidCredentials
	}
	if err := s.store.Set(common.StorageKeyAuth, authSentinel); err != nil {
		s.logger.Error("Failed to persist session", zap.Error(err))
		return err
	}
	s.logger.Info("Logged in", zap.String("user", user))
	return nil
}

func (s *Session) Logout() error {
	if err := s.store.Remove(common.StorageKeyAuth); err != nil {
		s.logger.Error("Failed to clear session", zap.Error(err))
		return err
	}
	s.logger.Info("Logged out")
	return nil
}

// IsAuthenticated is true only when the stored flag is exactly "true".
func (s *Session) IsAuthenticated() bool {
	value, ok, err := s.store.Get(common.StorageKeyAuth)
	if err != nil {
		s.logger.Warn("Failed to read session", zap.Error(err))
		return false
	}
	return ok && value == authSentinel
}

// Theme falls back to system when nothing valid is stored.
func (s *Session) Theme() models.Theme {
	value, ok, err := s.store.Get(common.StorageKeyTheme)
	if err != nil || !ok {
		return models.ThemeSystem
	}
	theme := models.Theme(value)
	if !theme.Valid() {
		return models.ThemeSystem
	}
	return theme
}

func (s *Session) SetTheme(theme models.Theme) error {
	if !theme.Valid() {
		return ErrInvalidTheme
	}
	if err := s.store.Set(common.StorageKeyTheme, string(theme)); err != nil {
		s.logger.Error("Failed to persist theme", zap.String("theme", string(theme)), zap.Error(err))
		return err
	}
	return nil
}
