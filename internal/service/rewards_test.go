package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecofinds/marketplace/internal/models"
	"github.com/ecofinds/marketplace/internal/store"
)

func newTestRewards(t *testing.T) (*Rewards, *Users) {
	t.Helper()
	users, err := NewUsers(context.Background(), store.NewMemory())
	require.NoError(t, err)
	return NewRewards(users), users
}

func mustCreate(t *testing.T, users *Users, name, email string) models.UserAccount {
	t.Helper()
	acc, err := users.Create(context.Background(), name, email)
	require.NoError(t, err)
	return acc
}

func TestWelcomeBonus(t *testing.T) {
	rewards, users := newTestRewards(t)
	acc := mustCreate(t, users, "Ada", "ada@example.com")

	updated, err := rewards.ApplyWelcomeBonus(context.Background(), acc.ID)
	require.NoError(t, err)

	assert.Equal(t, WelcomeBonusPoints, updated.EcoPoints)
	assert.Equal(t, []string{BadgeWelcomeWarrior}, updated.Badges)
}

func TestListingReward(t *testing.T) {
	rewards, users := newTestRewards(t)
	acc := mustCreate(t, users, "Ada", "ada@example.com")
	ctx := context.Background()

	updated, err := rewards.ApplyListingReward(ctx, acc.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.EcoPoints)
	assert.Contains(t, updated.Badges, BadgeFirstSeller)
	assert.NotContains(t, updated.Badges, BadgeCenturyClub)

	// The second listing crosses 100 points: Century Club, no duplicate
	// First Seller even if the caller misreports a first listing.
	updated, err = rewards.ApplyListingReward(ctx, acc.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 100, updated.EcoPoints)
	assert.Contains(t, updated.Badges, BadgeCenturyClub)
	assert.Equal(t, 1, countBadge(updated.Badges, BadgeFirstSeller))
}

func TestPurchaseReward(t *testing.T) {
	rewards, users := newTestRewards(t)
	acc := mustCreate(t, users, "Bob", "bob@example.com")
	ctx := context.Background()

	impact := models.EcoImpact{CO2Saved: 30, WaterSaved: 12000, EnergySaved: 180}
	updated, err := rewards.ApplyPurchaseReward(ctx, acc.ID, impact)
	require.NoError(t, err)

	assert.Equal(t, 25, updated.EcoPoints)
	assert.Equal(t, impact, updated.TotalImpact)
	assert.Contains(t, updated.Badges, BadgeFirstPurchase)
	assert.NotContains(t, updated.Badges, BadgeClimateWarrior)

	// Second purchase accumulates, First Purchase stays single.
	updated, err = rewards.ApplyPurchaseReward(ctx, acc.ID, impact)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.EcoPoints)
	assert.Equal(t, impact.Add(impact), updated.TotalImpact)
	assert.Equal(t, 1, countBadge(updated.Badges, BadgeFirstPurchase))
}

func TestClimateWarriorThreshold(t *testing.T) {
	rewards, users := newTestRewards(t)
	acc := mustCreate(t, users, "Eve", "eve@example.com")
	ctx := context.Background()

	// Exactly 50 is not enough; the co2 saving must exceed it.
	updated, err := rewards.ApplyPurchaseReward(ctx, acc.ID, models.EcoImpact{CO2Saved: 50})
	require.NoError(t, err)
	assert.NotContains(t, updated.Badges, BadgeClimateWarrior)

	updated, err = rewards.ApplyPurchaseReward(ctx, acc.ID, models.EcoImpact{CO2Saved: 50.1})
	require.NoError(t, err)
	assert.Contains(t, updated.Badges, BadgeClimateWarrior)
}

func TestRewardsUnknownUser(t *testing.T) {
	rewards, _ := newTestRewards(t)
	_, err := rewards.ApplyListingReward(context.Background(), "nobody", false)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRewardsMonotonicUnderConcurrency(t *testing.T) {
	rewards, users := newTestRewards(t)
	acc := mustCreate(t, users, "Racer", "racer@example.com")
	ctx := context.Background()

	const events = 50
	var wg sync.WaitGroup
	wg.Add(events * 2)
	for i := 0; i < events; i++ {
		go func() {
			defer wg.Done()
			_, err := rewards.ApplyListingReward(ctx, acc.ID, false)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := rewards.ApplyPurchaseReward(ctx, acc.ID, models.EcoImpact{CO2Saved: 1, WaterSaved: 2, EnergySaved: 3})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := users.Get(acc.ID)
	require.NoError(t, err)

	// No lost updates: every event landed exactly once.
	assert.Equal(t, events*ListingRewardPoints+events*PurchaseRewardPoints, final.EcoPoints)
	assert.Equal(t, models.EcoImpact{CO2Saved: 50, WaterSaved: 100, EnergySaved: 150}, final.TotalImpact)
	assert.Equal(t, 1, countBadge(final.Badges, BadgeFirstPurchase))
	assert.Equal(t, 1, countBadge(final.Badges, BadgeCenturyClub))
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		points   int
		level    int
		progress int
		toNext   int
	}{
		{0, 1, 0, 100},
		{50, 1, 50, 50},
		{99, 1, 99, 1},
		{100, 2, 0, 100},
		{150, 2, 50, 50},
		{250, 3, 50, 50},
	}
	for _, tt := range tests {
		got := LevelFor(tt.points)
		assert.Equal(t, tt.level, got.Level, "points=%d", tt.points)
		assert.Equal(t, tt.progress, got.ProgressToNextLevel, "points=%d", tt.points)
		assert.Equal(t, tt.toNext, got.PointsToNextLevel, "points=%d", tt.points)
	}
}

func TestUsersCreateRejectsDuplicateEmail(t *testing.T) {
	_, users := newTestRewards(t)
	mustCreate(t, users, "Ada", "ada@example.com")

	var vErr *ValidationError
	_, err := users.Create(context.Background(), "Imposter", "ada@example.com")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Field)
}

func countBadge(badges []string, badge string) int {
	n := 0
	for _, b := range badges {
		if b == badge {
			n++
		}
	}
	return n
}
