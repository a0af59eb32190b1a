package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivanoskov/equilibra/internal/model"
	"github.com/ivanoskov/equilibra/internal/money"
)

// AlertStatus compares the current month's spending with the alert limit.
type AlertStatus struct {
	Alert       *model.SpendingAlert
	Spending    float64
	PercentUsed float64
	OverLimit   bool
}

// Remaining is the unspent part of the limit, never negative.
func (a AlertStatus) Remaining() float64 {
	if a.Alert == nil {
		return 0
	}
	return math.Max(a.Alert.MonthlyLimit-a.Spending, 0)
}

// EvaluateAlert computes the status for the month containing now.
func EvaluateAlert(alert *model.SpendingAlert, txs []model.Transaction, now time.Time) AlertStatus {
	spending := totalsBetween(txs, model.MonthStart(now), model.MonthEnd(now)).expenses

	status := AlertStatus{Alert: alert, Spending: spending}
	if alert == nil {
		return status
	}
	if alert.MonthlyLimit > 0 {
		status.PercentUsed = math.Min(money.Percent(spending, alert.MonthlyLimit), 100)
	}
	status.OverLimit = alert.Enabled && spending > alert.MonthlyLimit
	return status
}

// SpendingAlert loads the alert and this month's transactions together.
func (s *Tracker) SpendingAlert(ctx context.Context, userID string) (*AlertStatus, error) {
	now := s.now()
	start, end := model.MonthStart(now), model.MonthEnd(now)

	var (
		alert *model.SpendingAlert
		txs   []model.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		alert, err = s.store.GetAlert(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.store.ListTransactions(gctx, userID, model.TransactionFilter{
			StartDate: &start,
			EndDate:   &end,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load spending alert: %w", err)
	}

	status := EvaluateAlert(alert, txs, now)
	return &status, nil
}

// SaveAlert updates the user's alert or creates it when missing.
func (s *Tracker) SaveAlert(ctx context.Context, userID string, limit float64, enabled bool) (*model.SpendingAlert, error) {
	if limit <= 0 {
		return nil, invalid("monthly_limit", "enter a valid monthly limit")
	}

	existing, err := s.store.GetAlert(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get spending alert: %w", err)
	}

	if existing != nil {
		existing.MonthlyLimit = limit
		existing.Enabled = enabled
		if err := s.store.UpdateAlert(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update spending alert: %w", err)
		}
		return existing, nil
	}

	alert := &model.SpendingAlert{
		UserID:       userID,
		MonthlyLimit: limit,
		Enabled:      enabled,
	}
	if err := s.store.CreateAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to create spending alert: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Float64("limit", limit).Msg("spending alert created")
	return alert, nil
}

// DisableAlert keeps the limit but stops warnings. A missing alert is a no-op.
func (s *Tracker) DisableAlert(ctx context.Context, userID string) error {
	existing, err := s.store.GetAlert(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get spending alert: %w", err)
	}
	if existing == nil || !existing.Enabled {
		return nil
	}
	existing.Enabled = false
	if err := s.store.UpdateAlert(ctx, existing); err != nil {
		return fmt.Errorf("failed to disable spending alert: %w", err)
	}
	return nil
}

func (s *Tracker) DeleteAlert(ctx context.Context, userID string) error {
	existing, err := s.store.GetAlert(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get spending alert: %w", err)
	}
	if existing == nil {
		return nil
	}
	if err := s.store.DeleteAlert(ctx, existing.ID); err != nil {
		return fmt.Errorf("failed to delete spending alert: %w", err)
	}
	return nil
}
