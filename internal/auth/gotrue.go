package auth

import (
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// Backend is the subset of GoTrue the service calls. Token-scoped calls take
// the user's access token explicitly.
type Backend interface {
	Signup(req types.SignupRequest) (*types.SignupResponse, error)
	SignIn(email, password string) (*types.TokenResponse, error)
	Refresh(refreshToken string) (*types.TokenResponse, error)
	Logout(accessToken string) error
	UpdateUser(accessToken string, req types.UpdateUserRequest) (*types.UpdateUserResponse, error)
}

// GoTrueBackend adapts a gotrue client, usually supabase.Client.Auth.
type GoTrueBackend struct {
	client gotrue.Client
}

func NewGoTrueBackend(client gotrue.Client) *GoTrueBackend {
	return &GoTrueBackend{client: client}
}

func (b *GoTrueBackend) Signup(req types.SignupRequest) (*types.SignupResponse, error) {
	return b.client.Signup(req)
}

func (b *GoTrueBackend) SignIn(email, password string) (*types.TokenResponse, error) {
	return b.client.SignInWithEmailPassword(email, password)
}

func (b *GoTrueBackend) Refresh(refreshToken string) (*types.TokenResponse, error) {
	return b.client.RefreshToken(refreshToken)
}

func (b *GoTrueBackend) Logout(accessToken string) error {
	return b.client.WithToken(accessToken).Logout()
}

func (b *GoTrueBackend) UpdateUser(accessToken string, req types.UpdateUserRequest) (*types.UpdateUserResponse, error) {
	return b.client.WithToken(accessToken).UpdateUser(req)
}
