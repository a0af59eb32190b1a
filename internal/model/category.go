package model

import "time"

// CategoryType separates income labels from expense labels.
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

type Category struct {
	ID        string       `json:"id,omitempty"`
	UserID    string       `json:"user_id"`
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
	Icon      string       `json:"icon"`
	Color     string       `json:"color"`
	CreatedAt *time.Time   `json:"created_at,omitempty"`
}

// CategoryIcons lists the icon names offered for categories.
var CategoryIcons = []string{
	"restaurant", "car", "cart", "heart", "school", "home", "game-controller", "cash",
	"trending-up", "laptop", "gift", "airplane", "paw", "fitness", "musical-notes", "logo-usd",
}

// Palette is shared by categories and savings goals.
var Palette = []string{
	"#FF6B6B", "#FF9F43", "#FECA57", "#1DD1A1", "#54A0FF",
	"#5F27CD", "#FF6B9D", "#00D2D3", "#A259FF", "#31D158",
}
