package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/equilibra/internal/model"
)

func TestTracker_GoalLifecycle(t *testing.T) {
	ctx := context.Background()
	tracker, _ := newTestTracker(t)

	_, err := tracker.CreateGoal(ctx, NewGoal{UserID: testUser, Name: "Trip", TargetAmount: "0"})
	assert.True(t, IsValidation(err))

	goal, err := tracker.CreateGoal(ctx, NewGoal{UserID: testUser, Name: "Trip", TargetAmount: "1000"})
	require.NoError(t, err)
	assert.Equal(t, model.GoalActive, goal.Status)
	assert.Zero(t, goal.CurrentAmount)

	_, _, err = tracker.Deposit(ctx, goal.ID, "-5")
	assert.True(t, IsValidation(err))

	goal, achievement, err := tracker.Deposit(ctx, goal.ID, "600")
	require.NoError(t, err)
	assert.Nil(t, achievement)
	assert.Equal(t, model.GoalActive, goal.Status)
	assert.Equal(t, 60.0, goal.Progress())

	goal, achievement, err = tracker.Deposit(ctx, goal.ID, "400")
	require.NoError(t, err)
	assert.Equal(t, model.GoalCompleted, goal.Status)
	require.NotNil(t, achievement)
	assert.Equal(t, "Goal reached", achievement.Title)
	assert.Equal(t, goal.ID, achievement.GoalID)

	_, achievement, err = tracker.Deposit(ctx, goal.ID, "50")
	require.NoError(t, err)
	assert.Nil(t, achievement, "the achievement unlocks once")

	stats, err := tracker.GoalStats(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, GoalStats{Active: 0, Completed: 1, Achievements: 1}, *stats)

	other, err := tracker.CreateGoal(ctx, NewGoal{UserID: testUser, Name: "Car", TargetAmount: "20000"})
	require.NoError(t, err)
	require.NoError(t, tracker.CancelGoal(ctx, other.ID))

	cancelled := model.GoalCancelled
	goals, err := tracker.Goals(ctx, testUser, &cancelled)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Car", goals[0].Name)

	all, err := tracker.Goals(ctx, testUser, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	updated, err := tracker.UpdateGoal(ctx, other.ID, NewGoal{Name: "New car", TargetAmount: "25000"})
	require.NoError(t, err)
	assert.Equal(t, 25000.0, updated.TargetAmount)

	require.NoError(t, tracker.DeleteGoal(ctx, other.ID))
	all, _ = tracker.Goals(ctx, testUser, nil)
	assert.Len(t, all, 1)

	achievements, err := tracker.Achievements(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, achievements, 1)
}

func TestTracker_DepositReachingTargetExactly(t *testing.T) {
	ctx := context.Background()
	tracker, _ := newTestTracker(t)

	goal, err := tracker.CreateGoal(ctx, NewGoal{UserID: testUser, Name: "Phone", TargetAmount: "0,30"})
	require.NoError(t, err)
	_, _, err = tracker.Deposit(ctx, goal.ID, "0,10")
	require.NoError(t, err)
	goal, achievement, err := tracker.Deposit(ctx, goal.ID, "0,20")
	require.NoError(t, err)
	assert.Equal(t, model.GoalCompleted, goal.Status)
	assert.NotNil(t, achievement)
}
