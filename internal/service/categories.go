package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ivanoskov/equilibra/internal/model"
)

type NewCategory struct {
	UserID string
	Name   string
	Type   model.CategoryType
	Icon   string
	Color  string
}

func (s *Tracker) CreateCategory(ctx context.Context, in NewCategory) (*model.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "the category name is required")
	}
	if in.Type == "" {
		in.Type = model.CategoryExpense
	}
	if in.Type != model.CategoryIncome && in.Type != model.CategoryExpense {
		return nil, invalid("type", "a category is either income or expense")
	}
	if in.Icon == "" {
		in.Icon = model.CategoryIcons[0]
	}
	if in.Color == "" {
		in.Color = model.Palette[0]
	}

	category := &model.Category{
		UserID: in.UserID,
		Name:   name,
		Type:   in.Type,
		Icon:   in.Icon,
		Color:  in.Color,
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *Tracker) UpdateCategory(ctx context.Context, category *model.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return invalid("name", "the category name is required")
	}
	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// DeleteCategory leaves transactions that reference the name untouched.
func (s *Tracker) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *Tracker) Categories(ctx context.Context, userID string) ([]model.Category, error) {
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (s *Tracker) CategoriesByType(ctx context.Context, userID string, categoryType model.CategoryType) ([]model.Category, error) {
	categories, err := s.store.ListCategoriesByType(ctx, userID, categoryType)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories by type: %w", err)
	}
	return categories, nil
}

var defaultCategories = []NewCategory{
	{Name: "Groceries", Type: model.CategoryExpense, Icon: "cart", Color: "#FF6B6B"},
	{Name: "Transport", Type: model.CategoryExpense, Icon: "car", Color: "#FF9F43"},
	{Name: "Restaurants", Type: model.CategoryExpense, Icon: "restaurant", Color: "#FECA57"},
	{Name: "Home", Type: model.CategoryExpense, Icon: "home", Color: "#54A0FF"},
	{Name: "Health", Type: model.CategoryExpense, Icon: "heart", Color: "#FF6B9D"},
	{Name: "Leisure", Type: model.CategoryExpense, Icon: "game-controller", Color: "#5F27CD"},
	{Name: "Salary", Type: model.CategoryIncome, Icon: "cash", Color: "#1DD1A1"},
	{Name: "Investments", Type: model.CategoryIncome, Icon: "trending-up", Color: "#31D158"},
}

// CreateDefaultCategories seeds a starter set for users with no categories.
func (s *Tracker) CreateDefaultCategories(ctx context.Context, userID string) error {
	existing, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get existing categories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, c := range defaultCategories {
		c.UserID = userID
		if _, err := s.CreateCategory(ctx, c); err != nil {
			return fmt.Errorf("failed to create category %s: %w", c.Name, err)
		}
	}
	s.logger.Info().Str("user_id", userID).Int("count", len(defaultCategories)).Msg("default categories created")
	return nil
}
