package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ivanoskov/equilibra/internal/model"
	"github.com/ivanoskov/equilibra/internal/money"
)

type NewGoal struct {
	UserID       string
	Name         string
	TargetAmount string
	Icon         string
	Color        string
	Deadline     *model.Date
}

func (s *Tracker) CreateGoal(ctx context.Context, in NewGoal) (*model.SavingsGoal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "the goal name is required")
	}
	target, err := money.ParseAmount(in.TargetAmount)
	if err != nil {
		return nil, invalid("target_amount", "the goal target must be greater than zero")
	}
	if in.Icon == "" {
		in.Icon = model.GoalIcons[0]
	}
	if in.Color == "" {
		in.Color = model.Palette[0]
	}

	goal := &model.SavingsGoal{
		UserID:        in.UserID,
		Name:          name,
		TargetAmount:  target,
		CurrentAmount: 0,
		Icon:          in.Icon,
		Color:         in.Color,
		Deadline:      in.Deadline,
		Status:        model.GoalActive,
	}
	if err := s.store.CreateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create savings goal: %w", err)
	}
	return goal, nil
}

// UpdateGoal edits name, target and appearance; the saved amount is kept.
func (s *Tracker) UpdateGoal(ctx context.Context, id string, in NewGoal) (*model.SavingsGoal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "the goal name is required")
	}
	target, err := money.ParseAmount(in.TargetAmount)
	if err != nil {
		return nil, invalid("target_amount", "the goal target must be greater than zero")
	}

	goal, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get savings goal: %w", err)
	}
	goal.Name = name
	goal.TargetAmount = target
	if in.Icon != "" {
		goal.Icon = in.Icon
	}
	if in.Color != "" {
		goal.Color = in.Color
	}
	if in.Deadline != nil {
		goal.Deadline = in.Deadline
	}
	if err := s.store.UpdateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to update savings goal: %w", err)
	}
	return goal, nil
}

// Deposit adds amount to the goal. Reaching the target completes the goal
// and unlocks an achievement the first time it happens.
func (s *Tracker) Deposit(ctx context.Context, goalID, amount string) (*model.SavingsGoal, *model.Achievement, error) {
	value, err := money.ParseAmount(amount)
	if err != nil {
		return nil, nil, invalid("amount", "the amount must be greater than zero")
	}

	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get savings goal: %w", err)
	}

	wasCompleted := goal.Status == model.GoalCompleted
	goal.CurrentAmount = money.Sum(goal.CurrentAmount, value)
	if goal.CurrentAmount >= goal.TargetAmount {
		goal.Status = model.GoalCompleted
	} else {
		goal.Status = model.GoalActive
	}
	if err := s.store.UpdateGoal(ctx, goal); err != nil {
		return nil, nil, fmt.Errorf("failed to deposit into savings goal: %w", err)
	}

	if wasCompleted || goal.Status != model.GoalCompleted {
		return goal, nil, nil
	}

	achievement := &model.Achievement{
		UserID:      goal.UserID,
		GoalID:      goal.ID,
		Title:       "Goal reached",
		Description: fmt.Sprintf("You saved %s for %s", money.Format(goal.TargetAmount), goal.Name),
		Icon:        "trophy",
		UnlockedAt:  s.now().UTC(),
	}
	if err := s.store.CreateAchievement(ctx, achievement); err != nil {
		s.logger.Warn().Err(err).Str("goal_id", goal.ID).Msg("failed to unlock achievement")
		return goal, nil, nil
	}
	s.logger.Info().Str("goal_id", goal.ID).Msg("savings goal completed")
	return goal, achievement, nil
}

func (s *Tracker) CancelGoal(ctx context.Context, id string) error {
	goal, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get savings goal: %w", err)
	}
	goal.Status = model.GoalCancelled
	if err := s.store.UpdateGoal(ctx, goal); err != nil {
		return fmt.Errorf("failed to cancel savings goal: %w", err)
	}
	return nil
}

func (s *Tracker) DeleteGoal(ctx context.Context, id string) error {
	if err := s.store.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("failed to delete savings goal: %w", err)
	}
	return nil
}

// Goals lists the user's goals; a nil status lists all of them.
func (s *Tracker) Goals(ctx context.Context, userID string, status *model.GoalStatus) ([]model.SavingsGoal, error) {
	goals, err := s.store.ListGoals(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get savings goals: %w", err)
	}
	return goals, nil
}

func (s *Tracker) Achievements(ctx context.Context, userID string) ([]model.Achievement, error) {
	achievements, err := s.store.ListAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get achievements: %w", err)
	}
	return achievements, nil
}

type GoalStats struct {
	Active       int
	Completed    int
	Achievements int
}

// GoalStats runs the three counts concurrently.
func (s *Tracker) GoalStats(ctx context.Context, userID string) (*GoalStats, error) {
	var stats GoalStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.Active, err = s.store.CountGoals(gctx, userID, model.GoalActive)
		return err
	})
	g.Go(func() error {
		var err error
		stats.Completed, err = s.store.CountGoals(gctx, userID, model.GoalCompleted)
		return err
	})
	g.Go(func() error {
		var err error
		stats.Achievements, err = s.store.CountAchievements(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to get goal stats: %w", err)
	}
	return &stats, nil
}
