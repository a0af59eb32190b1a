package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ivanoskov/equilibra/internal/model"
)

// MemoryRepository keeps every table in process memory. It mirrors the
// ordering of the Supabase queries so callers see the same results.
type MemoryRepository struct {
	mu           sync.RWMutex
	now          func() time.Time
	accounts     map[string]model.Account
	cards        map[string]model.CreditCard
	categories   map[string]model.Category
	transactions map[string]model.Transaction
	goals        map[string]model.SavingsGoal
	achievements map[string]model.Achievement
	alerts       map[string]model.SpendingAlert
	profiles     map[string]model.Profile
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		now:          time.Now,
		accounts:     make(map[string]model.Account),
		cards:        make(map[string]model.CreditCard),
		categories:   make(map[string]model.Category),
		transactions: make(map[string]model.Transaction),
		goals:        make(map[string]model.SavingsGoal),
		achievements: make(map[string]model.Achievement),
		alerts:       make(map[string]model.SpendingAlert),
		profiles:     make(map[string]model.Profile),
	}
}

func (m *MemoryRepository) stamp() *time.Time {
	now := m.now().UTC()
	return &now
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

func ownedBy[T any](rows map[string]T, keep func(T) bool) []T {
	out := make([]T, 0)
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func createdBefore(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b != nil
	}
	return a.Before(*b)
}

// Accounts

func (m *MemoryRepository) ListAccounts(ctx context.Context, userID string) ([]model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := ownedBy(m.accounts, func(a model.Account) bool { return a.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return createdBefore(out[i].CreatedAt, out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) CreateAccount(ctx context.Context, account *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account.ID = newID(account.ID)
	account.CreatedAt = m.stamp()
	m.accounts[account.ID] = *account
	return nil
}

func (m *MemoryRepository) UpdateAccount(ctx context.Context, account *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; !ok {
		return ErrNotFound
	}
	account.UpdatedAt = m.stamp()
	m.accounts[account.ID] = *account
	return nil
}

func (m *MemoryRepository) DeleteAccount(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, id)
	return nil
}

// Credit cards

func (m *MemoryRepository) ListCards(ctx context.Context, userID string) ([]model.CreditCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := ownedBy(m.cards, func(c model.CreditCard) bool { return c.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return createdBefore(out[i].CreatedAt, out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) CreateCard(ctx context.Context, card *model.CreditCard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	card.ID = newID(card.ID)
	card.CreatedAt = m.stamp()
	m.cards[card.ID] = *card
	return nil
}

func (m *MemoryRepository) UpdateCard(ctx context.Context, card *model.CreditCard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[card.ID]; !ok {
		return ErrNotFound
	}
	card.UpdatedAt = m.stamp()
	m.cards[card.ID] = *card
	return nil
}

func (m *MemoryRepository) DeleteCard(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cards, id)
	return nil
}

// Categories

func (m *MemoryRepository) ListCategories(ctx context.Context, userID string) ([]model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := ownedBy(m.categories, func(c model.Category) bool { return c.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepository) ListCategoriesByType(ctx context.Context, userID string, categoryType model.CategoryType) ([]model.Category, error) {
	all, _ := m.ListCategories(ctx, userID)
	out := make([]model.Category, 0, len(all))
	for _, c := range all {
		if c.Type == categoryType {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemoryRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	category.ID = newID(category.ID)
	category.CreatedAt = m.stamp()
	m.categories[category.ID] = *category
	return nil
}

func (m *MemoryRepository) UpdateCategory(ctx context.Context, category *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[category.ID]; !ok {
		return ErrNotFound
	}
	m.categories[category.ID] = *category
	return nil
}

func (m *MemoryRepository) DeleteCategory(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.categories, id)
	return nil
}

// Transactions

func (m *MemoryRepository) CreateTransaction(ctx context.Context, transaction *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	transaction.ID = newID(transaction.ID)
	transaction.CreatedAt = m.stamp()
	m.transactions[transaction.ID] = *transaction
	return nil
}

func (m *MemoryRepository) ListTransactions(ctx context.Context, userID string, filter model.TransactionFilter) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := ownedBy(m.transactions, func(t model.Transaction) bool {
		if t.UserID != userID {
			return false
		}
		if filter.Type != nil && t.Type != *filter.Type {
			return false
		}
		if filter.StartDate != nil && t.Date.Before(*filter.StartDate) {
			return false
		}
		if filter.EndDate != nil && t.Date.After(*filter.EndDate) {
			return false
		}
		return true
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date)
		}
		return createdBefore(out[j].CreatedAt, out[i].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *MemoryRepository) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MemoryRepository) UpdateTransaction(ctx context.Context, transaction *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[transaction.ID]; !ok {
		return ErrNotFound
	}
	transaction.UpdatedAt = m.stamp()
	m.transactions[transaction.ID] = *transaction
	return nil
}

func (m *MemoryRepository) DeleteTransaction(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.transactions, id)
	return nil
}

// Savings goals

func (m *MemoryRepository) ListGoals(ctx context.Context, userID string, status *model.GoalStatus) ([]model.SavingsGoal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := ownedBy(m.goals, func(g model.SavingsGoal) bool {
		return g.UserID == userID && (status == nil || g.Status == *status)
	})
	sort.SliceStable(out, func(i, j int) bool { return createdBefore(out[j].CreatedAt, out[i].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) GetGoal(ctx context.Context, id string) (*model.SavingsGoal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.goals[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (m *MemoryRepository) CreateGoal(ctx context.Context, goal *model.SavingsGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	goal.ID = newID(goal.ID)
	goal.CreatedAt = m.stamp()
	m.goals[goal.ID] = *goal
	return nil
}

func (m *MemoryRepository) UpdateGoal(ctx context.Context, goal *model.SavingsGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.goals[goal.ID]; !ok {
		return ErrNotFound
	}
	goal.UpdatedAt = m.stamp()
	m.goals[goal.ID] = *goal
	return nil
}

func (m *MemoryRepository) DeleteGoal(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.goals, id)
	return nil
}

func (m *MemoryRepository) CountGoals(ctx context.Context, userID string, status model.GoalStatus) (int, error) {
	goals, _ := m.ListGoals(ctx, userID, &status)
	return len(goals), nil
}

// Achievements

func (m *MemoryRepository) ListAchievements(ctx context.Context, userID string) ([]model.Achievement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := ownedBy(m.achievements, func(a model.Achievement) bool { return a.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].UnlockedAt.After(out[j].UnlockedAt) })
	return out, nil
}

func (m *MemoryRepository) CreateAchievement(ctx context.Context, achievement *model.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	achievement.ID = newID(achievement.ID)
	m.achievements[achievement.ID] = *achievement
	return nil
}

func (m *MemoryRepository) CountAchievements(ctx context.Context, userID string) (int, error) {
	all, _ := m.ListAchievements(ctx, userID)
	return len(all), nil
}

// Spending alerts

func (m *MemoryRepository) GetAlert(ctx context.Context, userID string) (*model.SpendingAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.alerts {
		if a.UserID == userID {
			alert := a
			return &alert, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) CreateAlert(ctx context.Context, alert *model.SpendingAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	alert.ID = newID(alert.ID)
	alert.CreatedAt = m.stamp()
	m.alerts[alert.ID] = *alert
	return nil
}

func (m *MemoryRepository) UpdateAlert(ctx context.Context, alert *model.SpendingAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.alerts[alert.ID]; !ok {
		return ErrNotFound
	}
	alert.UpdatedAt = m.stamp()
	m.alerts[alert.ID] = *alert
	return nil
}

func (m *MemoryRepository) DeleteAlert(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.alerts, id)
	return nil
}

// Profiles

func (m *MemoryRepository) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryRepository) CreateProfile(ctx context.Context, profile *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile.CreatedAt = m.stamp()
	m.profiles[profile.ID] = *profile
	return nil
}

func (m *MemoryRepository) UpdateProfile(ctx context.Context, profile *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[profile.ID]; !ok {
		return ErrNotFound
	}
	profile.UpdatedAt = m.stamp()
	m.profiles[profile.ID] = *profile
	return nil
}

var _ Store = (*MemoryRepository)(nil)
