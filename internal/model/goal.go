package model

import "time"

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

type SavingsGoal struct {
	ID            string     `json:"id,omitempty"`
	UserID        string     `json:"user_id"`
	Name          string     `json:"name"`
	TargetAmount  float64    `json:"target_amount"`
	CurrentAmount float64    `json:"current_amount"`
	Icon          string     `json:"icon"`
	Color         string     `json:"color"`
	Deadline      *Date      `json:"deadline,omitempty"`
	Status        GoalStatus `json:"status"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// Progress returns the saved share of the target in percent, capped at 100.
func (g SavingsGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	p := g.CurrentAmount / g.TargetAmount * 100
	if p > 100 {
		return 100
	}
	return p
}

type Achievement struct {
	ID          string    `json:"id,omitempty"`
	UserID      string    `json:"user_id"`
	GoalID      string    `json:"goal_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

// GoalIcons lists the icon names offered for goals.
var GoalIcons = []string{
	"airplane", "car", "home", "laptop", "school", "medkit",
	"gift", "diamond", "wallet", "rocket", "heart", "trophy",
}
