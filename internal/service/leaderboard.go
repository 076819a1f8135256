package service

import (
	"sort"

	"github.com/ecofinds/marketplace/internal/models"
)

// RankUsers orders a user snapshot collection by eco points descending and
// assigns dense sequential ranks 1..N. Equal point totals still get
// distinct ranks, broken by the input's original order; consumers rely on
// the result being a dense 1..N ordering, not a competition ranking.
func RankUsers(users []models.UserSnapshot) []models.RankedUser {
	ranked := make([]models.RankedUser, len(users))
	for i, u := range users {
		ranked[i] = models.RankedUser{UserSnapshot: u}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EcoPoints > ranked[j].EcoPoints
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
