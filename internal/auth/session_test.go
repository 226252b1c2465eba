package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Storefront/internal/auth"
)

const secret = "test-secret-test-secret-test-secret"

func TestSession_DefaultsToSignedOut(t *testing.T) {
	s := auth.NewSession(auth.NewTokenMaker(secret), nil)

	assert.Nil(t, s.State().Get())
	assert.False(t, s.IsAuthenticated().Get())
}

func TestSession_SignInAndOut(t *testing.T) {
	tm := auth.NewTokenMaker(secret)
	s := auth.NewSession(tm, nil)

	var flags []bool
	s.IsAuthenticated().Subscribe(func(v bool) { flags = append(flags, v) })

	tok, err := tm.New("u_1", "user@example.com", "user", time.Minute)
	require.NoError(t, err)

	require.NoError(t, s.SignIn(tok))
	st := s.State().Get()
	require.NotNil(t, st)
	assert.Equal(t, "u_1", st.UserID)
	assert.True(t, s.IsAuthenticated().Get())

	s.SignOut()
	assert.False(t, s.IsAuthenticated().Get())
	assert.NotNil(t, s.State().Get())

	assert.Equal(t, []bool{true, false}, flags)
}

func TestSession_RejectsBadTokens(t *testing.T) {
	s := auth.NewSession(auth.NewTokenMaker(secret), nil)

	other, err := auth.NewTokenMaker("another-secret-another-secret-xx").New("u_1", "", "user", time.Minute)
	require.NoError(t, err)
	expired, err := auth.NewTokenMaker(secret).New("u_1", "", "user", -time.Minute)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": other,
		"expired":      expired,
	} {
		t.Run(name, func(t *testing.T) {
			err := s.SignIn(tok)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
			assert.False(t, s.IsAuthenticated().Get())
		})
	}
}

func TestSession_StateIsACopy(t *testing.T) {
	tm := auth.NewTokenMaker(secret)
	s := auth.NewSession(tm, nil)

	tok, err := tm.New("u_1", "", "user", time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.SignIn(tok))

	s.State().Get().IsAuthenticated = false
	assert.True(t, s.IsAuthenticated().Get())
}
