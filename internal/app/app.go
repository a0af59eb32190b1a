// Package app wires the tracker, auth and preferences from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/supabase-community/supabase-go"

	"github.com/ivanoskov/equilibra/internal/auth"
	"github.com/ivanoskov/equilibra/internal/bot"
	"github.com/ivanoskov/equilibra/internal/config"
	"github.com/ivanoskov/equilibra/internal/logging"
	"github.com/ivanoskov/equilibra/internal/preferences"
	"github.com/ivanoskov/equilibra/internal/repository"
	"github.com/ivanoskov/equilibra/internal/service"
)

type App struct {
	Tracker  *service.Tracker
	Auth     *auth.Service
	Sessions *auth.Sessions
	Prefs    *preferences.SQLiteStore

	unsubscribe func()
}

// NewStore opens the data backend named by cfg. The supabase backend uses the
// admin key since every query is already scoped by user id.
func NewStore(cfg *config.Config, logger zerolog.Logger) (repository.Store, error) {
	if cfg.DataBackend == config.BackendMemory {
		logger.Warn().Msg("using in-memory data backend, nothing will be persisted")
		return repository.NewMemoryRepository(), nil
	}
	repo, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.AdminKey(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase repository: %w", err)
	}
	return repo, nil
}

// New builds every dependency of the bot and restores persisted sessions.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	store, err := NewStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	var authSvc *auth.Service
	if cfg.DataBackend == config.BackendSupabase {
		// auth calls run with the anon key, like the mobile client
		client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, &supabase.ClientOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create supabase auth client: %w", err)
		}
		authSvc = auth.NewService(auth.NewGoTrueBackend(client.Auth), store, logging.Component(logger, "auth"))
	}

	prefs, err := preferences.NewSQLiteStore(cfg.PreferencesDBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}

	sessions := auth.NewSessions(prefs)
	if err := sessions.Load(ctx); err != nil {
		prefs.Close()
		return nil, fmt.Errorf("failed to restore sessions: %w", err)
	}
	sessionLog := logging.Component(logger, "sessions")
	unsubscribe := sessions.Subscribe(func(e auth.Event) {
		ev := sessionLog.Info().Str("event", string(e.Kind)).Int64("chat_id", e.ChatID)
		if e.Session != nil {
			ev = ev.Str("user_id", e.Session.UserID)
		}
		ev.Msg("auth state changed")
	})

	var opts []service.Option
	if authSvc != nil {
		opts = append(opts, service.WithCredentials(authSvc))
	}

	return &App{
		Tracker:     service.NewTracker(store, logger, opts...),
		Auth:        authSvc,
		Sessions:    sessions,
		Prefs:       prefs,
		unsubscribe: unsubscribe,
	}, nil
}

// BotDeps adapts the app to bot.Deps. Without a supabase backend there is no
// auth service and every chat stays signed out.
func (a *App) BotDeps() bot.Deps {
	deps := bot.Deps{
		Tracker:  a.Tracker,
		Sessions: a.Sessions,
		Prefs:    a.Prefs,
	}
	if a.Auth != nil {
		deps.Auth = a.Auth
	}
	return deps
}

func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	return a.Prefs.Close()
}
