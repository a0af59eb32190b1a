package auth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/ivanoskov/equilibra/internal/repository"
	"github.com/ivanoskov/equilibra/internal/service"
)

type fakeBackend struct {
	signup      *types.SignupResponse
	token       *types.TokenResponse
	err         error
	loggedOut   string
	updates     []types.UpdateUserRequest
	lastRefresh string
}

func (f *fakeBackend) Signup(req types.SignupRequest) (*types.SignupResponse, error) {
	return f.signup, f.err
}

func (f *fakeBackend) SignIn(email, password string) (*types.TokenResponse, error) {
	return f.token, f.err
}

func (f *fakeBackend) Refresh(refreshToken string) (*types.TokenResponse, error) {
	f.lastRefresh = refreshToken
	return f.token, f.err
}

func (f *fakeBackend) Logout(accessToken string) error {
	f.loggedOut = accessToken
	return f.err
}

func (f *fakeBackend) UpdateUser(accessToken string, req types.UpdateUserRequest) (*types.UpdateUserResponse, error) {
	f.updates = append(f.updates, req)
	return &types.UpdateUserResponse{}, f.err
}

func newSession(id uuid.UUID, email string) types.Session {
	return types.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Date(2024, 3, 15, 11, 0, 0, 0, time.UTC).Unix(),
		User:         types.User{ID: id, Email: email},
	}
}

func newService(backend Backend) (*Service, *repository.MemoryRepository) {
	repo := repository.NewMemoryRepository()
	return NewService(backend, repo, zerolog.New(io.Discard)), repo
}

func TestSignUpValidation(t *testing.T) {
	svc, _ := newService(&fakeBackend{})
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "ana@example.com", "secret", "")
	assert.True(t, service.IsValidation(err))

	_, err = svc.SignUp(ctx, "", "secret", "Ana")
	assert.True(t, service.IsValidation(err))

	_, err = svc.SignUp(ctx, "ana@example.com", "12345", "Ana")
	msg, ok := service.ValidationMessage(err)
	require.True(t, ok)
	assert.Contains(t, msg, "6")
}

func TestSignUpCreatesProfile(t *testing.T) {
	id := uuid.New()
	backend := &fakeBackend{signup: &types.SignupResponse{
		User:    types.User{ID: id, Email: "ana@example.com"},
		Session: newSession(id, "ana@example.com"),
	}}
	svc, repo := newService(backend)

	result, err := svc.SignUp(context.Background(), " ana@example.com ", "secret", "Ana")
	require.NoError(t, err)
	assert.Equal(t, id.String(), result.UserID)
	assert.False(t, result.ConfirmationPending)
	require.NotNil(t, result.Session)
	assert.Equal(t, "access", result.Session.AccessToken)

	profile, err := repo.GetProfile(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.Name)
	assert.Equal(t, "ana@example.com", profile.Email)
}

func TestSignUpPendingConfirmation(t *testing.T) {
	id := uuid.New()
	backend := &fakeBackend{signup: &types.SignupResponse{User: types.User{ID: id}}}
	svc, _ := newService(backend)

	result, err := svc.SignUp(context.Background(), "ana@example.com", "secret", "Ana")
	require.NoError(t, err)
	assert.True(t, result.ConfirmationPending)
	assert.Nil(t, result.Session)
	assert.Equal(t, id.String(), result.UserID)
}

func TestSignIn(t *testing.T) {
	id := uuid.New()
	backend := &fakeBackend{token: &types.TokenResponse{Session: newSession(id, "ana@example.com")}}
	svc, _ := newService(backend)

	session, err := svc.SignIn(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, id.String(), session.UserID)
	assert.Equal(t, "refresh", session.RefreshToken)
	assert.Equal(t, time.Date(2024, 3, 15, 11, 0, 0, 0, time.UTC), session.ExpiresAt)

	backend.err = errors.New("invalid login credentials")
	_, err = svc.SignIn(context.Background(), "ana@example.com", "wrong")
	require.Error(t, err)
	assert.False(t, service.IsValidation(err))
}

func TestRefreshKeepsUser(t *testing.T) {
	backend := &fakeBackend{token: &types.TokenResponse{Session: types.Session{AccessToken: "new"}}}
	svc, _ := newService(backend)

	refreshed, err := svc.Refresh(context.Background(), Session{UserID: "u1", RefreshToken: "r1"})
	require.NoError(t, err)
	assert.Equal(t, "r1", backend.lastRefresh)
	assert.Equal(t, "u1", refreshed.UserID)
	assert.Equal(t, "new", refreshed.AccessToken)

	_, err = svc.Refresh(context.Background(), Session{UserID: "u1"})
	assert.Error(t, err)
}

func TestCredentialUpdates(t *testing.T) {
	backend := &fakeBackend{}
	svc, _ := newService(backend)
	ctx := context.Background()

	require.NoError(t, svc.UpdateEmail(ctx, "tok", "new@example.com"))
	require.NoError(t, svc.UpdatePassword(ctx, "tok", "newsecret"))
	require.Len(t, backend.updates, 2)
	assert.Equal(t, "new@example.com", backend.updates[0].Email)
	require.NotNil(t, backend.updates[1].Password)
	assert.Equal(t, "newsecret", *backend.updates[1].Password)

	require.NoError(t, svc.SignOut(ctx, Session{AccessToken: "tok"}))
	assert.Equal(t, "tok", backend.loggedOut)
}

type memorySessionStore struct {
	saved map[int64]Session
}

func (m *memorySessionStore) SaveSession(_ context.Context, chatID int64, s Session) error {
	m.saved[chatID] = s
	return nil
}

func (m *memorySessionStore) DeleteSession(_ context.Context, chatID int64) error {
	delete(m.saved, chatID)
	return nil
}

func (m *memorySessionStore) LoadSessions(context.Context) (map[int64]Session, error) {
	return m.saved, nil
}

func TestSessionsLifecycle(t *testing.T) {
	store := &memorySessionStore{saved: map[int64]Session{7: {UserID: "restored"}}}
	sessions := NewSessions(store)
	ctx := context.Background()
	require.NoError(t, sessions.Load(ctx))

	restored, ok := sessions.Get(7)
	require.True(t, ok)
	assert.Equal(t, "restored", restored.UserID)

	var events []EventKind
	unsubscribe := sessions.Subscribe(func(e Event) { events = append(events, e.Kind) })

	require.NoError(t, sessions.Put(ctx, 1, Session{UserID: "u1"}, EventSignedIn))
	require.NoError(t, sessions.Put(ctx, 1, Session{UserID: "u1", AccessToken: "t2"}, EventTokenRefreshed))
	require.NoError(t, sessions.Remove(ctx, 1))
	require.NoError(t, sessions.Remove(ctx, 1))

	assert.Equal(t, []EventKind{EventSignedIn, EventTokenRefreshed, EventSignedOut}, events)
	_, ok = sessions.Get(1)
	assert.False(t, ok)
	assert.NotContains(t, store.saved, int64(1))
	assert.Len(t, sessions.All(), 1)

	unsubscribe()
	require.NoError(t, sessions.Put(ctx, 2, Session{UserID: "u2"}, EventSignedIn))
	assert.Len(t, events, 3)
}

func TestSessionExpiresWithin(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: now.Add(2 * time.Minute)}
	assert.True(t, s.ExpiresWithin(now, 5*time.Minute))
	assert.False(t, s.ExpiresWithin(now, time.Minute))
	assert.False(t, Session{}.ExpiresWithin(now, time.Hour))
}
