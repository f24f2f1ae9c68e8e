package handlers

import (
	"context"
	"net/http"

	"trenchi/models"

	"github.com/gin-gonic/gin"
)

// LikeUser records a like from the authenticated wallet on the target wallet
// and reports whether it completed a mutual match.
func LikeUser(c *gin.Context) {
	actor := c.GetString("walletAddress")
	target := c.Param("walletAddress")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	isMatch, err := engine.Like(ctx, actor, target)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Like recorded", "isMatch": isMatch})
}

// DislikeUser records a pass. One-directional; the target's document is
// never written.
func DislikeUser(c *gin.Context) {
	actor := c.GetString("walletAddress")
	target := c.Param("walletAddress")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := engine.Dislike(ctx, actor, target); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Dislike recorded"})
}

// UnmatchUser dissolves an existing match from both sides. Match points
// already earned are kept.
func UnmatchUser(c *gin.Context) {
	actor := c.GetString("walletAddress")
	target := c.Param("walletAddress")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := engine.Unmatch(ctx, actor, target); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unmatched successfully"})
}

// GetPotentialMatches returns swipe candidates for the authenticated wallet:
// mutual gender/seeking compatibility, minus anyone already swiped on.
func GetPotentialMatches(c *gin.Context) {
	viewer := c.GetString("walletAddress")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	candidates, err := engine.Candidates(ctx, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	if candidates == nil {
		candidates = []models.Profile{}
	}

	c.JSON(http.StatusOK, candidates)
}

// GetMatches returns the full profiles of the authenticated wallet's matches.
func GetMatches(c *gin.Context) {
	viewer := c.GetString("walletAddress")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	matches, err := engine.Matches(ctx, viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, matches)
}
