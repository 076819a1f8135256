package service

import (
	"context"

	"github.com/ecofinds/marketplace/internal/models"
)

// Point awards per event and the level step.
const (
	WelcomeBonusPoints   = 50
	ListingRewardPoints  = 50
	PurchaseRewardPoints = 25
	PointsPerLevel       = 100
)

// Badge labels. Grants are idempotent and badges are never revoked.
const (
	BadgeWelcomeWarrior = "🌱 Welcome Warrior"
	BadgeFirstSeller    = "🏪 First Seller"
	BadgeCenturyClub    = "💯 Century Club"
	BadgeFirstPurchase  = "🛒 First Purchase"
	BadgeClimateWarrior = "🌍 Climate Warrior"
)

// climateWarriorCO2 is the co2Saved a single purchase must exceed.
const climateWarriorCO2 = 50.0

// Rewards applies the per-user accrual rules. Every event mutates the
// account as one combined read-modify-write through Users.Update.
type Rewards struct {
	users *Users
}

func NewRewards(users *Users) *Rewards {
	return &Rewards{users: users}
}

// ApplyWelcomeBonus seeds a freshly registered account.
func (r *Rewards) ApplyWelcomeBonus(ctx context.Context, userID string) (models.UserAccount, error) {
	return r.users.Update(ctx, userID, func(acc *models.UserAccount) {
		acc.EcoPoints += WelcomeBonusPoints
		grantBadge(acc, BadgeWelcomeWarrior)
	})
}

// ApplyListingReward credits a successful listing insertion. firstListing
// reports whether the seller had zero prior products at insertion time;
// the caller derives it from the catalog rather than a separate counter.
func (r *Rewards) ApplyListingReward(ctx context.Context, userID string, firstListing bool) (models.UserAccount, error) {
	return r.users.Update(ctx, userID, func(acc *models.UserAccount) {
		acc.EcoPoints += ListingRewardPoints
		if firstListing {
			grantBadge(acc, BadgeFirstSeller)
		}
		// Century Club is checked after the increment lands.
		if acc.EcoPoints >= PointsPerLevel {
			grantBadge(acc, BadgeCenturyClub)
		}
	})
}

// ApplyPurchaseReward credits a successful purchase with the impact copied
// from the bought product.
func (r *Rewards) ApplyPurchaseReward(ctx context.Context, userID string, impact models.EcoImpact) (models.UserAccount, error) {
	return r.users.Update(ctx, userID, func(acc *models.UserAccount) {
		acc.EcoPoints += PurchaseRewardPoints
		acc.TotalImpact = acc.TotalImpact.Add(impact)
		grantBadge(acc, BadgeFirstPurchase)
		if impact.CO2Saved > climateWarriorCO2 {
			grantBadge(acc, BadgeClimateWarrior)
		}
	})
}

// LevelFor derives the progression state from a points total. Levels are
// never stored.
func LevelFor(points int) models.Level {
	progress := points % PointsPerLevel
	return models.Level{
		Level:               points/PointsPerLevel + 1,
		ProgressToNextLevel: progress,
		PointsToNextLevel:   PointsPerLevel - progress,
	}
}

func grantBadge(acc *models.UserAccount, badge string) {
	if !acc.HasBadge(badge) {
		acc.Badges = append(acc.Badges, badge)
	}
}
