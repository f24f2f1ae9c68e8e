package handlers

import (
	"errors"
	"net/http"
	"time"

	"trenchi/matching"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// requestTimeout bounds every Mongo round trip made from a handler.
const requestTimeout = 10 * time.Second

var engine *matching.Engine

// Init wires the matching engine into the handler package. Called once from
// main before the router starts serving.
func Init(e *matching.Engine) {
	engine = e
}

// respondError translates matching errors into HTTP responses. Anything
// outside the business-rule taxonomy is a 500 and gets logged.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, matching.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
	case errors.Is(err, matching.ErrDuplicateWallet):
		c.JSON(http.StatusConflict, gin.H{"error": "Profile already exists for this wallet address"})
	case errors.Is(err, matching.ErrInvalidReferralCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid referral code"})
	case errors.Is(err, matching.ErrSelfReferral):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot refer yourself"})
	case errors.Is(err, matching.ErrAlreadyLiked):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You have already liked this user"})
	case errors.Is(err, matching.ErrAlreadyMatched):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You are already matched with this user"})
	case errors.Is(err, matching.ErrCannotDislikeAfterLike):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You have already liked this user, cannot dislike"})
	case errors.Is(err, matching.ErrSelfAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot perform this action on yourself"})
	case errors.Is(err, matching.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "details": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
