package repository

import (
	"context"
	"errors"

	"github.com/ivanoskov/equilibra/internal/model"
)

// ErrNotFound is returned by single-row lookups that matched nothing.
var ErrNotFound = errors.New("record not found")

// Accounts
type AccountRepository interface {
	ListAccounts(ctx context.Context, userID string) ([]model.Account, error)
	CreateAccount(ctx context.Context, account *model.Account) error
	UpdateAccount(ctx context.Context, account *model.Account) error
	DeleteAccount(ctx context.Context, id string) error
}

// Credit cards
type CardRepository interface {
	ListCards(ctx context.Context, userID string) ([]model.CreditCard, error)
	CreateCard(ctx context.Context, card *model.CreditCard) error
	UpdateCard(ctx context.Context, card *model.CreditCard) error
	DeleteCard(ctx context.Context, id string) error
}

// Categories
type CategoryRepository interface {
	ListCategories(ctx context.Context, userID string) ([]model.Category, error)
	ListCategoriesByType(ctx context.Context, userID string, categoryType model.CategoryType) ([]model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

// Transactions
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, transaction *model.Transaction) error
	ListTransactions(ctx context.Context, userID string, filter model.TransactionFilter) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, transaction *model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
}

// Savings goals. A nil status lists every goal.
type SavingsGoalRepository interface {
	ListGoals(ctx context.Context, userID string, status *model.GoalStatus) ([]model.SavingsGoal, error)
	GetGoal(ctx context.Context, id string) (*model.SavingsGoal, error)
	CreateGoal(ctx context.Context, goal *model.SavingsGoal) error
	UpdateGoal(ctx context.Context, goal *model.SavingsGoal) error
	DeleteGoal(ctx context.Context, id string) error
	CountGoals(ctx context.Context, userID string, status model.GoalStatus) (int, error)
}

type AchievementRepository interface {
	ListAchievements(ctx context.Context, userID string) ([]model.Achievement, error)
	CreateAchievement(ctx context.Context, achievement *model.Achievement) error
	CountAchievements(ctx context.Context, userID string) (int, error)
}

// Spending alerts. GetAlert returns (nil, nil) when the user has none.
type AlertRepository interface {
	GetAlert(ctx context.Context, userID string) (*model.SpendingAlert, error)
	CreateAlert(ctx context.Context, alert *model.SpendingAlert) error
	UpdateAlert(ctx context.Context, alert *model.SpendingAlert) error
	DeleteAlert(ctx context.Context, id string) error
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	CreateProfile(ctx context.Context, profile *model.Profile) error
	UpdateProfile(ctx context.Context, profile *model.Profile) error
}

// Store bundles every table the application talks to.
type Store interface {
	AccountRepository
	CardRepository
	CategoryRepository
	TransactionRepository
	SavingsGoalRepository
	AchievementRepository
	AlertRepository
	ProfileRepository
}
