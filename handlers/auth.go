package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const sessionDuration = 7 * 24 * time.Hour

type loginRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
}

// Login issues a session token for a wallet address that already has a
// profile. Wallet ownership is not challenged here; the wallet address is
// the credential, as it is throughout the system.
func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	profile, err := engine.Get(ctx, req.WalletAddress)
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"walletAddress": profile.WalletAddress,
		"iat":           now.Unix(),
		"exp":           now.Add(sessionDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Login successful",
		"token":         signed,
		"walletAddress": profile.WalletAddress,
	})
}
