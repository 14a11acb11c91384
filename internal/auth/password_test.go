package auth_test

import (
	"strings"
	"testing"

	"tasktracker/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := auth.NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("Str0ng!Passphrase")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Passphrase", hash)

	ok, err := h.Verify(hash, "Str0ng!Passphrase")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(hash, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Verify("not-a-bcrypt-hash", "whatever")
	assert.Error(t, err)
}

func TestCheckPasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		username string
		want     []string
	}{
		{
			name:     "strong",
			password: "Str0ng!Passphrase",
			username: "alice",
		},
		{
			name:     "too short",
			password: "Xy7!q",
			username: "alice",
			want:     []string{"This password is too short. It must contain at least 8 characters."},
		},
		{
			name:     "common",
			password: "Password123",
			username: "alice",
			want:     []string{"This password is too common."},
		},
		{
			name:     "numeric and common",
			password: "12345678",
			username: "alice",
			want:     []string{"This password is too common.", "This password is entirely numeric."},
		},
		{
			name:     "numeric only",
			password: "80417263951",
			username: "alice",
			want:     []string{"This password is entirely numeric."},
		},
		{
			name:     "similar to username",
			password: "alice.smith",
			username: "alice.smith",
			want:     []string{"The password is too similar to the username."},
		},
		{
			// same letters reordered still count: the check compares character multisets
			name:     "anagram of username",
			password: "ecilaxyz9",
			username: "alice",
			want:     []string{"The password is too similar to the username."},
		},
		{
			name:     "too long",
			password: strings.Repeat("xK9!", 19),
			username: "alice",
			want:     []string{"This password is too long. It must contain at most 72 bytes."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.CheckPasswordStrength(tt.password, tt.username))
		})
	}
}
