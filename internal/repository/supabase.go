package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/ivanoskov/equilibra/internal/model"
)

const (
	tableAccounts     = "accounts"
	tableCards        = "credit_cards"
	tableCategories   = "categories"
	tableTransactions = "transactions"
	tableGoals        = "savings_goals"
	tableAchievements = "achievements"
	tableAlerts       = "spending_alerts"
	tableProfiles     = "profiles"

	returnRows = "representation"

	// PostgREST code for a single-row request that matched zero rows.
	codeNoRows = "PGRST116"
)

// SupabaseRepository implements Store on top of Supabase tables.
type SupabaseRepository struct {
	client *supabase.Client
	logger zerolog.Logger
	now    func() time.Time
}

func NewSupabaseRepository(url, key string, logger zerolog.Logger) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, err
	}

	return &SupabaseRepository{
		client: client,
		logger: logger.With().Str("component", "supabase").Logger(),
		now:    time.Now,
	}, nil
}

// Client exposes the underlying client for the auth service.
func (r *SupabaseRepository) Client() *supabase.Client {
	return r.client
}

func (r *SupabaseRepository) stamp() *time.Time {
	now := r.now().UTC()
	return &now
}

func isNoRows(err error) bool {
	return err != nil && strings.Contains(err.Error(), codeNoRows)
}

// decodeFirst unmarshals a returned row set and copies its first row into dst.
func decodeFirst[T any](data []byte, dst *T) error {
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		// .Single() responses are an object, not an array
		return json.Unmarshal(data, dst)
	}
	if len(rows) > 0 {
		*dst = rows[0]
	}
	return nil
}

func decodeAll[T any](data []byte) ([]T, error) {
	rows := make([]T, 0)
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SupabaseRepository) insert(table string, value any, dst any) error {
	data, count, err := r.client.From(table).Insert(value, false, "", returnRows, "").Execute()
	if err != nil {
		r.logger.Error().Err(err).Str("table", table).Msg("insert failed")
		return fmt.Errorf("failed to create %s row: %w", table, err)
	}
	r.logger.Debug().Str("table", table).Int64("count", count).Msg("row created")
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse created %s row: %w", table, err)
	}
	return nil
}

func (r *SupabaseRepository) update(table, id string, value any, dst any) error {
	data, _, err := r.client.From(table).
		Update(value, returnRows, "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update %s row: %w", table, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse updated %s row: %w", table, err)
	}
	return nil
}

func (r *SupabaseRepository) delete(table, id string) error {
	_, _, err := r.client.From(table).
		Delete("", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete %s row: %w", table, err)
	}
	return nil
}

func (r *SupabaseRepository) count(table string, filters map[string]string) (int, error) {
	query := r.client.From(table).Select("id", "exact", true)
	for column, value := range filters {
		query = query.Eq(column, value)
	}
	_, count, err := query.Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to count %s rows: %w", table, err)
	}
	return int(count), nil
}

// Transactions

func (r *SupabaseRepository) CreateTransaction(ctx context.Context, transaction *model.Transaction) error {
	var created model.Transaction
	if err := decodeInsert(r, tableTransactions, transaction, &created); err != nil {
		return err
	}
	*transaction = created
	return nil
}

func (r *SupabaseRepository) ListTransactions(ctx context.Context, userID string, filter model.TransactionFilter) ([]model.Transaction, error) {
	query := r.client.From(tableTransactions).
		Select("*", "", false).
		Eq("user_id", userID)

	if filter.Type != nil {
		query = query.Eq("type", string(*filter.Type))
	}
	// Filters are keyed by column, so a two-sided range goes through and=().
	switch {
	case filter.StartDate != nil && filter.EndDate != nil:
		query = query.And(fmt.Sprintf("date.gte.%s,date.lte.%s", filter.StartDate.String(), filter.EndDate.String()), "")
	case filter.StartDate != nil:
		query = query.Gte("date", filter.StartDate.String())
	case filter.EndDate != nil:
		query = query.Lte("date", filter.EndDate.String())
	}

	// newest first
	query = query.
		Order("date", &postgrest.OrderOpts{Ascending: false}).
		Order("created_at", &postgrest.OrderOpts{Ascending: false})

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit, "")
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	transactions, err := decodeAll[model.Transaction](data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transactions: %w", err)
	}
	r.logger.Debug().Str("user_id", userID).Int("count", len(transactions)).Msg("transactions fetched")
	return transactions, nil
}

func (r *SupabaseRepository) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	data, _, err := r.client.From(tableTransactions).
		Select("*", "", false).
		Eq("id", id).
		Single().
		Execute()
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	var transaction model.Transaction
	if err := decodeFirst(data, &transaction); err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}
	return &transaction, nil
}

func (r *SupabaseRepository) UpdateTransaction(ctx context.Context, transaction *model.Transaction) error {
	transaction.UpdatedAt = r.stamp()
	var updated model.Transaction
	if err := decodeUpdate(r, tableTransactions, transaction.ID, transaction, &updated); err != nil {
		return err
	}
	*transaction = updated
	return nil
}

func (r *SupabaseRepository) DeleteTransaction(ctx context.Context, id string) error {
	return r.delete(tableTransactions, id)
}

// Categories

func (r *SupabaseRepository) ListCategories(ctx context.Context, userID string) ([]model.Category, error) {
	data, _, err := r.client.From(tableCategories).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return decodeAll[model.Category](data)
}

func (r *SupabaseRepository) ListCategoriesByType(ctx context.Context, userID string, categoryType model.CategoryType) ([]model.Category, error) {
	data, _, err := r.client.From(tableCategories).
		Select("*", "", false).
		Eq("user_id", userID).
		Eq("type", string(categoryType)).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get categories by type: %w", err)
	}
	return decodeAll[model.Category](data)
}

func (r *SupabaseRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	var created model.Category
	if err := decodeInsert(r, tableCategories, category, &created); err != nil {
		return err
	}
	*category = created
	return nil
}

func (r *SupabaseRepository) UpdateCategory(ctx context.Context, category *model.Category) error {
	var updated model.Category
	if err := decodeUpdate(r, tableCategories, category.ID, category, &updated); err != nil {
		return err
	}
	*category = updated
	return nil
}

func (r *SupabaseRepository) DeleteCategory(ctx context.Context, id string) error {
	return r.delete(tableCategories, id)
}

// decodeInsert inserts value and decodes the first returned row into dst.
func decodeInsert[T any](r *SupabaseRepository, table string, value *T, dst *T) error {
	var rows []T
	if err := r.insert(table, value, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		*dst = *value
		return nil
	}
	*dst = rows[0]
	return nil
}

// decodeUpdate updates the row with the given id and decodes the result into dst.
func decodeUpdate[T any](r *SupabaseRepository, table, id string, value *T, dst *T) error {
	var rows []T
	if err := r.update(table, id, value, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	*dst = rows[0]
	return nil
}

func userFilter(userID string) map[string]string {
	return map[string]string{"user_id": userID}
}
