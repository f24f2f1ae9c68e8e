package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultLeaderboardLimit = 100

// LeaderboardEntry is the public leaderboard row shape.
type LeaderboardEntry struct {
	Name          string  `json:"name"`
	WalletAddress string  `json:"walletAddress"`
	ProfileImage  string  `json:"profileImage"`
	MatchCount    int     `json:"matchCount"`
	ReferralCount int     `json:"referralCount"`
	TotalPoints   float64 `json:"totalPoints"`
}

// GetLeaderboard returns the top profiles by total points. Profiles without
// a name fall back to a wallet address prefix.
func GetLeaderboard(c *gin.Context) {
	limit := int64(defaultLeaderboardLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	profiles, err := engine.Leaderboard(ctx, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	entries := make([]LeaderboardEntry, len(profiles))
	for i, p := range profiles {
		name := p.Name
		if name == "" && len(p.WalletAddress) >= 6 {
			name = p.WalletAddress[:6]
		}
		image := ""
		if len(p.Images) > 0 {
			image = p.Images[0]
		}
		entries[i] = LeaderboardEntry{
			Name:          name,
			WalletAddress: p.WalletAddress,
			ProfileImage:  image,
			MatchCount:    p.MatchCount,
			ReferralCount: p.ReferralCount,
			TotalPoints:   p.TotalPoints,
		}
	}

	c.JSON(http.StatusOK, entries)
}
