package services

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func (s *ServicesTestSuite) TestCreateUserValidation() {
	cases := []struct {
		name     string
		username string
		password string
		currency string
		want     error
	}{
		{"duplicate", "asha", "secret1", "", core.ErrUserExists},
		{"blank name", "  ", "secret1", "", core.ErrEmptyName},
		{"short password", "ravi", "abc", "", core.ErrWeakPassword},
		{"unknown currency", "ravi", "secret1", "ZZZ", core.ErrUnknownCurrency},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.users.CreateUser(s.ctx, tc.username, tc.password, false, tc.currency)
			assert.ErrorIs(s.T(), err, tc.want)
		})
	}

	u, err := s.users.CreateUser(s.ctx, "ravi", "secret1", false, "eur")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "EUR", u.Currency)
	assert.NotEqual(s.T(), "secret1", u.PasswordHash)
}

func (s *ServicesTestSuite) TestVerifyUser() {
	sess, err := s.users.VerifyUser(s.ctx, "asha", "secret1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.sess.UserID, sess.UserID)
	assert.Equal(s.T(), "INR", sess.Currency)
	assert.NotEmpty(s.T(), sess.RequestID)

	_, err = s.users.VerifyUser(s.ctx, "asha", "wrong")
	assert.ErrorIs(s.T(), err, core.ErrInvalidCredentials)

	_, err = s.users.VerifyUser(s.ctx, "nobody", "secret1")
	assert.ErrorIs(s.T(), err, core.ErrInvalidCredentials)
}

func (s *ServicesTestSuite) TestUpdatePassword() {
	err := s.users.UpdatePassword(s.ctx, s.sess, "wrong", "newsecret")
	assert.ErrorIs(s.T(), err, core.ErrInvalidCredentials)

	err = s.users.UpdatePassword(s.ctx, s.sess, "secret1", "x")
	assert.ErrorIs(s.T(), err, core.ErrWeakPassword)

	require.NoError(s.T(), s.users.UpdatePassword(s.ctx, s.sess, "secret1", "newsecret"))
	_, err = s.users.VerifyUser(s.ctx, "asha", "newsecret")
	assert.NoError(s.T(), err)
}

func (s *ServicesTestSuite) TestUpdateCurrency() {
	sess, err := s.users.UpdateCurrency(s.ctx, s.sess, "usd")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "USD", sess.Currency)

	_, err = s.users.UpdateCurrency(s.ctx, s.sess, "dollars")
	assert.ErrorIs(s.T(), err, core.ErrUnknownCurrency)

	again, err := s.users.VerifyUser(s.ctx, "asha", "secret1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "USD", again.Currency)
}

func (s *ServicesTestSuite) TestAdminOperationsRequireAdmin() {
	_, err := s.users.ListUsers(s.ctx, s.sess)
	assert.ErrorIs(s.T(), err, core.ErrInvalidCredentials)
	assert.ErrorIs(s.T(), s.users.ResetPassword(s.ctx, s.sess, s.sess.UserID, "newsecret"), core.ErrInvalidCredentials)
	assert.ErrorIs(s.T(), s.users.DeleteUser(s.ctx, s.sess, s.sess.UserID), core.ErrInvalidCredentials)

	admin := s.newUser("root", true)
	users, err := s.users.ListUsers(s.ctx, admin)
	require.NoError(s.T(), err)
	assert.Len(s.T(), users, 2)

	require.NoError(s.T(), s.users.ResetPassword(s.ctx, admin, s.sess.UserID, "fresh-pass"))
	_, err = s.users.VerifyUser(s.ctx, "asha", "fresh-pass")
	assert.NoError(s.T(), err)

	assert.Error(s.T(), s.users.DeleteUser(s.ctx, admin, admin.UserID))
}

func (s *ServicesTestSuite) TestDeleteUserRemovesOwnedData() {
	admin := s.newUser("root", true)
	s.friendsDebt(1000, "Rahul")
	_, err := s.ledger.AddRecurringItem(s.ctx, s.sess, core.RecurringItem{Name: "Rent", Type: core.Expense, Amount: 100, IsActive: true})
	require.NoError(s.T(), err)
	_, err = s.users.RequestPasswordReset(s.ctx, "asha")
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.users.DeleteUser(s.ctx, admin, s.sess.UserID))

	_, err = s.users.VerifyUser(s.ctx, "asha", "secret1")
	assert.ErrorIs(s.T(), err, core.ErrInvalidCredentials)

	txs, err := s.ledger.Transactions(s.ctx, s.sess, core.Filter{})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), txs)
	cats, err := s.ledger.Categories(s.ctx, s.sess, "")
	require.NoError(s.T(), err)
	assert.Empty(s.T(), cats)
	items, err := s.ledger.RecurringItems(s.ctx, s.sess, false)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), items)
	pending, err := s.users.PendingPasswordRequests(s.ctx, admin)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), pending)

	assert.ErrorIs(s.T(), s.users.DeleteUser(s.ctx, admin, s.sess.UserID), core.ErrNotFound)
}

func (s *ServicesTestSuite) TestPasswordResetRequests() {
	admin := s.newUser("root", true)

	req, err := s.users.RequestPasswordReset(s.ctx, "asha")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), core.ResetPending, req.Status)
	assert.Equal(s.T(), "asha", req.Username)

	dup, err := s.users.RequestPasswordReset(s.ctx, "asha")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), req.ID, dup.ID)

	_, err = s.users.RequestPasswordReset(s.ctx, "nobody")
	assert.ErrorIs(s.T(), err, core.ErrNotFound)

	pending, err := s.users.PendingPasswordRequests(s.ctx, admin)
	require.NoError(s.T(), err)
	require.Len(s.T(), pending, 1)

	require.NoError(s.T(), s.users.ResolvePasswordRequest(s.ctx, admin, req.ID, "reset-pass"))
	_, err = s.users.VerifyUser(s.ctx, "asha", "reset-pass")
	assert.NoError(s.T(), err)

	pending, err = s.users.PendingPasswordRequests(s.ctx, admin)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), pending)

	err = s.users.ResolvePasswordRequest(s.ctx, admin, req.ID, "another-pass")
	assert.ErrorIs(s.T(), err, core.ErrNotFound)

	next, err := s.users.RequestPasswordReset(s.ctx, "asha")
	require.NoError(s.T(), err)
	assert.NotEqual(s.T(), req.ID, next.ID)
}

func (s *ServicesTestSuite) TestEnsureAdmin() {
	created, err := s.users.EnsureAdmin(s.ctx, "root", "rootpass")
	require.NoError(s.T(), err)
	assert.True(s.T(), created)

	created, err = s.users.EnsureAdmin(s.ctx, "root", "rootpass")
	require.NoError(s.T(), err)
	assert.False(s.T(), created)

	sess, err := s.users.VerifyUser(s.ctx, "root", "rootpass")
	require.NoError(s.T(), err)
	assert.True(s.T(), sess.IsAdmin)

	created, err = s.users.EnsureAdmin(s.ctx, "", "")
	require.NoError(s.T(), err)
	assert.False(s.T(), created)
}
