package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// UserService manages accounts, credentials and reset requests.
type UserService struct {
	storage         *storage.SQLiteRepository
	minPasswordLen  int
	defaultCurrency string
	hashCost        int
	now             Clock
}

type UserOption func(*UserService)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) UserOption {
	return func(s *UserService) { s.hashCost = cost }
}

func WithDefaultCurrency(code string) UserOption {
	return func(s *UserService) { s.defaultCurrency = strings.ToUpper(code) }
}

func WithUserClock(clock Clock) UserOption {
	return func(s *UserService) { s.now = clock }
}

func NewUserService(storage *storage.SQLiteRepository, minPasswordLen int, opts ...UserOption) *UserService {
	s := &UserService{
		storage:         storage,
		minPasswordLen:  minPasswordLen,
		defaultCurrency: core.DefaultCurrency,
		hashCost:        bcrypt.DefaultCost,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserService) hash(password string) (string, error) {
	if len(password) < s.minPasswordLen {
		return "", fmt.Errorf("%w: need at least %d characters", core.ErrWeakPassword, s.minPasswordLen)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// ValidateCurrency normalizes an ISO 4217 code.
func ValidateCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if money.GetCurrency(code) == nil {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownCurrency, code)
	}
	return code, nil
}

// CreateUser registers a user and seeds the default categories in the
// same SQL transaction. An empty currency means the service default.
func (s *UserService) CreateUser(ctx context.Context, username, password string, isAdmin bool, currency string) (core.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return core.User{}, core.ErrEmptyName
	}
	if currency == "" {
		currency = s.defaultCurrency
	}
	currency, err := ValidateCurrency(currency)
	if err != nil {
		return core.User{}, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return core.User{}, err
	}

	var created core.User
	err = s.storage.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		_, err := tx.GetUserByUsername(ctx, username)
		if err == nil {
			return fmt.Errorf("%w: %s", core.ErrUserExists, username)
		}
		if !errors.Is(err, core.ErrNotFound) {
			return err
		}

		created, err = tx.CreateUser(ctx, core.User{
			Username:     username,
			PasswordHash: hash,
			IsAdmin:      isAdmin,
			Currency:     currency,
		})
		if err != nil {
			return err
		}

		for _, c := range core.DefaultCategories() {
			c.UserID = created.ID
			if _, err := tx.AddCategory(ctx, c); err != nil {
				return fmt.Errorf("seed category %s: %w", c.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return core.User{}, err
	}
	return created, nil
}

// VerifyUser checks credentials and opens a session. Unknown users and
// wrong passwords are indistinguishable.
func (s *UserService) VerifyUser(ctx context.Context, username, password string) (core.Session, error) {
	u, err := s.storage.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, core.ErrNotFound) {
		return core.Session{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		slog.WarnContext(ctx, "Login rejected", "username", u.Username)
		return core.Session{}, core.ErrInvalidCredentials
	}
	return core.NewSession(u), nil
}

// UpdatePassword changes the session user's password after checking the
// old one.
func (s *UserService) UpdatePassword(ctx context.Context, sess core.Session, oldPassword, newPassword string) error {
	u, err := s.storage.GetUser(ctx, sess.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)); err != nil {
		return core.ErrInvalidCredentials
	}
	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	return s.storage.UpdatePasswordHash(ctx, u.ID, hash)
}

// ResetPassword sets a new password without the old one. Admin only.
func (s *UserService) ResetPassword(ctx context.Context, admin core.Session, userID int64, newPassword string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.storage.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Password reset by admin", "user_id", userID, "admin", admin.Username)
	return nil
}

// DeleteUser removes a user and everything they own. Admins cannot
// delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, admin core.Session, userID int64) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	if userID == admin.UserID {
		return fmt.Errorf("%w: cannot delete the current user", core.ErrInvalidCredentials)
	}
	return s.storage.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		return tx.DeleteUser(ctx, userID)
	})
}

// UpdateCurrency stores the display currency and returns the session
// carrying it.
func (s *UserService) UpdateCurrency(ctx context.Context, sess core.Session, currency string) (core.Session, error) {
	code, err := ValidateCurrency(currency)
	if err != nil {
		return sess, err
	}
	if err := s.storage.UpdateCurrency(ctx, sess.UserID, code); err != nil {
		return sess, err
	}
	sess.Currency = code
	return sess, nil
}

func (s *UserService) ListUsers(ctx context.Context, admin core.Session) ([]core.User, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	return s.storage.ListUsers(ctx)
}

// EnsureAdmin creates the bootstrap admin if no user has that name yet.
// It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" {
		return false, nil
	}
	_, err := s.CreateUser(ctx, username, password, true, "")
	if errors.Is(err, core.ErrUserExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	slog.InfoContext(ctx, "Admin user created", "username", username)
	return true, nil
}

// RequestPasswordReset files a reset request for username. A pending
// request is returned as is rather than duplicated.
func (s *UserService) RequestPasswordReset(ctx context.Context, username string) (core.PasswordResetRequest, error) {
	var req core.PasswordResetRequest
	err := s.storage.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		u, err := tx.GetUserByUsername(ctx, strings.TrimSpace(username))
		if err != nil {
			return err
		}
		req, err = tx.PendingRequestForUser(ctx, u.ID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, core.ErrNotFound) {
			return err
		}
		req, err = tx.CreatePasswordRequest(ctx, u, s.now())
		return err
	})
	return req, err
}

// PendingPasswordRequests lists open requests, newest first.
func (s *UserService) PendingPasswordRequests(ctx context.Context, admin core.Session) ([]core.PasswordResetRequest, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	return s.storage.ListPendingRequests(ctx)
}

// ResolvePasswordRequest sets the requester's new password and closes the
// request in one SQL transaction.
func (s *UserService) ResolvePasswordRequest(ctx context.Context, admin core.Session, requestID int64, newPassword string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	return s.storage.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		req, err := tx.GetPasswordRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != core.ResetPending {
			return fmt.Errorf("password request %d already resolved: %w", requestID, core.ErrNotFound)
		}
		if err := tx.UpdatePasswordHash(ctx, req.UserID, hash); err != nil {
			return err
		}
		return tx.ResolvePasswordRequest(ctx, requestID)
	})
}

func requireAdmin(sess core.Session) error {
	if !sess.IsAdmin {
		return fmt.Errorf("%w: admin rights required", core.ErrInvalidCredentials)
	}
	return nil
}
