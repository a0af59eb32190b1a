package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivanoskov/equilibra/internal/repository"
)

// Credentials changes the login identity of a signed-in user.
type Credentials interface {
	UpdateEmail(ctx context.Context, accessToken, email string) error
	UpdatePassword(ctx context.Context, accessToken, password string) error
}

// Tracker runs the finance rules on top of a Store. All aggregation happens
// in memory over rows fetched for one user.
type Tracker struct {
	store  repository.Store
	creds  Credentials
	logger zerolog.Logger
	now    func() time.Time
}

type Option func(*Tracker)

// WithClock replaces time.Now; tests pin the calendar with it.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithCredentials enables email and password changes in UpdateProfile.
func WithCredentials(creds Credentials) Option {
	return func(t *Tracker) { t.creds = creds }
}

func NewTracker(store repository.Store, logger zerolog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		store:  store,
		logger: logger.With().Str("component", "tracker").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Now is the tracker's clock.
func (s *Tracker) Now() time.Time {
	return s.now()
}
