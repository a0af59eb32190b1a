package repository

import (
	"context"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"github.com/ivanoskov/equilibra/internal/model"
)

// Accounts

func (r *SupabaseRepository) ListAccounts(ctx context.Context, userID string) ([]model.Account, error) {
	data, _, err := r.client.From(tableAccounts).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	return decodeAll[model.Account](data)
}

func (r *SupabaseRepository) CreateAccount(ctx context.Context, account *model.Account) error {
	return decodeInsert(r, tableAccounts, account, account)
}

func (r *SupabaseRepository) UpdateAccount(ctx context.Context, account *model.Account) error {
	account.UpdatedAt = r.stamp()
	return decodeUpdate(r, tableAccounts, account.ID, account, account)
}

func (r *SupabaseRepository) DeleteAccount(ctx context.Context, id string) error {
	return r.delete(tableAccounts, id)
}

// Credit cards

func (r *SupabaseRepository) ListCards(ctx context.Context, userID string) ([]model.CreditCard, error) {
	data, _, err := r.client.From(tableCards).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get credit cards: %w", err)
	}
	return decodeAll[model.CreditCard](data)
}

func (r *SupabaseRepository) CreateCard(ctx context.Context, card *model.CreditCard) error {
	return decodeInsert(r, tableCards, card, card)
}

func (r *SupabaseRepository) UpdateCard(ctx context.Context, card *model.CreditCard) error {
	card.UpdatedAt = r.stamp()
	return decodeUpdate(r, tableCards, card.ID, card, card)
}

func (r *SupabaseRepository) DeleteCard(ctx context.Context, id string) error {
	return r.delete(tableCards, id)
}

// Savings goals

func (r *SupabaseRepository) ListGoals(ctx context.Context, userID string, status *model.GoalStatus) ([]model.SavingsGoal, error) {
	query := r.client.From(tableGoals).
		Select("*", "", false).
		Eq("user_id", userID)
	if status != nil {
		query = query.Eq("status", string(*status))
	}

	data, _, err := query.Order("created_at", &postgrest.OrderOpts{Ascending: false}).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get savings goals: %w", err)
	}
	return decodeAll[model.SavingsGoal](data)
}

func (r *SupabaseRepository) GetGoal(ctx context.Context, id string) (*model.SavingsGoal, error) {
	data, _, err := r.client.From(tableGoals).
		Select("*", "", false).
		Eq("id", id).
		Single().
		Execute()
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get savings goal: %w", err)
	}

	var goal model.SavingsGoal
	if err := decodeFirst(data, &goal); err != nil {
		return nil, fmt.Errorf("failed to parse savings goal: %w", err)
	}
	return &goal, nil
}

func (r *SupabaseRepository) CreateGoal(ctx context.Context, goal *model.SavingsGoal) error {
	return decodeInsert(r, tableGoals, goal, goal)
}

func (r *SupabaseRepository) UpdateGoal(ctx context.Context, goal *model.SavingsGoal) error {
	goal.UpdatedAt = r.stamp()
	return decodeUpdate(r, tableGoals, goal.ID, goal, goal)
}

func (r *SupabaseRepository) DeleteGoal(ctx context.Context, id string) error {
	return r.delete(tableGoals, id)
}

func (r *SupabaseRepository) CountGoals(ctx context.Context, userID string, status model.GoalStatus) (int, error) {
	filters := userFilter(userID)
	filters["status"] = string(status)
	return r.count(tableGoals, filters)
}

// Achievements

func (r *SupabaseRepository) ListAchievements(ctx context.Context, userID string) ([]model.Achievement, error) {
	data, _, err := r.client.From(tableAchievements).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("unlocked_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get achievements: %w", err)
	}
	return decodeAll[model.Achievement](data)
}

func (r *SupabaseRepository) CreateAchievement(ctx context.Context, achievement *model.Achievement) error {
	return decodeInsert(r, tableAchievements, achievement, achievement)
}

func (r *SupabaseRepository) CountAchievements(ctx context.Context, userID string) (int, error) {
	return r.count(tableAchievements, userFilter(userID))
}

// Spending alerts

func (r *SupabaseRepository) GetAlert(ctx context.Context, userID string) (*model.SpendingAlert, error) {
	data, _, err := r.client.From(tableAlerts).
		Select("*", "", false).
		Eq("user_id", userID).
		Single().
		Execute()
	if isNoRows(err) {
		// no alert configured yet
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get spending alert: %w", err)
	}

	var alert model.SpendingAlert
	if err := decodeFirst(data, &alert); err != nil {
		return nil, fmt.Errorf("failed to parse spending alert: %w", err)
	}
	return &alert, nil
}

func (r *SupabaseRepository) CreateAlert(ctx context.Context, alert *model.SpendingAlert) error {
	return decodeInsert(r, tableAlerts, alert, alert)
}

func (r *SupabaseRepository) UpdateAlert(ctx context.Context, alert *model.SpendingAlert) error {
	alert.UpdatedAt = r.stamp()
	return decodeUpdate(r, tableAlerts, alert.ID, alert, alert)
}

func (r *SupabaseRepository) DeleteAlert(ctx context.Context, id string) error {
	return r.delete(tableAlerts, id)
}

// Profiles

func (r *SupabaseRepository) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	data, _, err := r.client.From(tableProfiles).
		Select("*", "", false).
		Eq("id", userID).
		Single().
		Execute()
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profile model.Profile
	if err := decodeFirst(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &profile, nil
}

func (r *SupabaseRepository) CreateProfile(ctx context.Context, profile *model.Profile) error {
	return decodeInsert(r, tableProfiles, profile, profile)
}

func (r *SupabaseRepository) UpdateProfile(ctx context.Context, profile *model.Profile) error {
	profile.UpdatedAt = r.stamp()
	return decodeUpdate(r, tableProfiles, profile.ID, profile, profile)
}

var _ Store = (*SupabaseRepository)(nil)
