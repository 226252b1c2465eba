// Package auth tracks the signed-in state of the single storefront session.
package auth

import (
	"fmt"

	"go.uber.org/zap"

	"Storefront/internal/reactive"
)

// State is what the session knows about the current user.
type State struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	UserID          string `json:"userId,omitempty"`
	Email           string `json:"email,omitempty"`
	Role            string `json:"role,omitempty"`
}

// Session publishes auth state as a cell. The cell holds nil until the
// first sign-in or sign-out.
type Session struct {
	tokens *TokenMaker
	log    *zap.Logger

	state         *reactive.Cell[*State]
	authenticated reactive.Readable[bool]
}

func NewSession(tokens *TokenMaker, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		tokens: tokens,
		log:    log,
		state:  reactive.NewCell[*State](nil),
	}
	s.authenticated = reactive.Computed(s.State(), isAuthenticated, reactive.Same[bool])
	return s
}

func isAuthenticated(st *State) bool {
	return st != nil && st.IsAuthenticated
}

func cloneState(st *State) *State {
	if st == nil {
		return nil
	}
	cp := *st
	return &cp
}

// State is the upstream auth stream.
func (s *Session) State() reactive.Readable[*State] {
	return s.state.ReadOnly(cloneState)
}

// IsAuthenticated is derived from State and is false until State has a
// value.
func (s *Session) IsAuthenticated() reactive.Readable[bool] {
	return s.authenticated
}

// SignIn verifies token and publishes the authenticated state. A rejected
// token leaves the current state untouched.
func (s *Session) SignIn(token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	s.state.Set(&State{
		IsAuthenticated: true,
		UserID:          claims.UserID,
		Email:           claims.Email,
		Role:            claims.Role,
	})
	s.log.Info("signed in", zap.String("user_id", claims.UserID))
	return nil
}

func (s *Session) SignOut() {
	s.state.Set(&State{})
	s.log.Info("signed out")
}
