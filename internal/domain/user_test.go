package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reverseHasher struct {
	calls int
	err   error
}

func (h *reverseHasher) Hash(password string) (string, error) {
	h.calls++
	if h.err != nil {
		return "", h.err
	}
	r := []rune(password)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return "h:" + string(r), nil
}

func (h *reverseHasher) Verify(password, hash string) (bool, error) {
	want, _ := h.Hash(password)
	return want == hash, nil
}

func TestUser_SetPassword(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		wantValid bool
	}{
		{name: "empty", password: ""},
		{name: "too short", password: "abc"},
		{name: "minimum length", password: "secret", wantValid: true},
		{name: "too long", password: strings.Repeat("x", MaxPasswordLength+1)},
		{name: "maximum length", password: strings.Repeat("x", MaxPasswordLength), wantValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &reverseHasher{}
			u := &User{PasswordHash: "old"}

			err := u.SetPassword(h, tt.password)
			if !tt.wantValid {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				assert.Equal(t, "old", u.PasswordHash)
				assert.Zero(t, h.calls)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, u.PasswordHash)
			assert.Equal(t, 1, h.calls)
		})
	}
}

func TestUser_SetPassword_HasherError(t *testing.T) {
	boom := errors.New("boom")
	u := &User{PasswordHash: "old"}

	err := u.SetPassword(&reverseHasher{err: boom}, "secret")
	require.ErrorIs(t, err, boom)
	assert.False(t, IsValidation(err))
	assert.Equal(t, "old", u.PasswordHash)
}

func TestUser_CheckPassword(t *testing.T) {
	h := &reverseHasher{}
	u := &User{}

	ok, err := u.CheckPassword(h, "secret")
	require.NoError(t, err)
	assert.False(t, ok, "empty hash never matches")

	require.NoError(t, u.SetPassword(h, "secret"))
	ok, err = u.CheckPassword(h, "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = u.CheckPassword(h, "wrong!")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestUser_Sanitized(t *testing.T) {
	token := "reset"
	u := &User{
		ID:                   "id-1",
		Name:                 "A",
		Email:                "a@x.com",
		PasswordHash:         "hash",
		ResetPasswordToken:   &token,
		NotificationSettings: map[string]bool{"email": true},
	}

	s := u.Sanitized()
	assert.Empty(t, s.PasswordHash)
	assert.Nil(t, s.ResetPasswordToken)
	assert.Equal(t, u.Email, s.Email)
	assert.Equal(t, map[string]bool{"email": true}, s.NotificationSettings)

	s.NotificationSettings["sms"] = true
	assert.NotContains(t, u.NotificationSettings, "sms")

	var nilUser *User
	assert.Nil(t, nilUser.Sanitized())
	assert.NotNil(t, (&User{}).Sanitized().NotificationSettings)
}
