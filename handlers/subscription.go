package handlers

import (
	"context"
	"net/http"
	"time"

	"trenchi/database"
	"trenchi/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type subscriptionRequest struct {
	TransactionSignature string    `json:"transactionSignature" binding:"required"`
	Plan                 string    `json:"plan" binding:"required,oneof='Basic Premium' 'Extended Premium'"`
	ExpirationDate       time.Time `json:"expirationDate" binding:"required"`
}

// SaveSubscription records or refreshes the premium subscription for the
// authenticated wallet. The on-chain transaction is stored verbatim; payment
// verification happens elsewhere.
func SaveSubscription(c *gin.Context) {
	wallet := c.GetString("walletAddress")

	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription payload"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"transactionSignature": req.TransactionSignature,
			"plan":                 req.Plan,
			"expirationDate":       req.ExpirationDate,
			"updatedAt":            now,
		},
		"$setOnInsert": bson.M{
			"walletAddress": wallet,
			"createdAt":     now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var sub models.Subscription
	err := database.Subscriptions.FindOneAndUpdate(ctx, bson.M{"walletAddress": wallet}, update, opts).Decode(&sub)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// GetSubscription returns the subscription state for a wallet, with a free
// plan default for wallets that never subscribed.
func GetSubscription(c *gin.Context) {
	wallet := c.Param("walletAddress")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var sub models.Subscription
	err := database.Subscriptions.FindOne(ctx, bson.M{"walletAddress": wallet}).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusOK, gin.H{
			"walletAddress":  wallet,
			"isExpired":      true,
			"plan":           models.PlanFree,
			"expirationDate": nil,
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                   sub.ID.Hex(),
		"walletAddress":        sub.WalletAddress,
		"transactionSignature": sub.TransactionSignature,
		"plan":                 sub.Plan,
		"expirationDate":       sub.ExpirationDate,
		"createdAt":            sub.CreatedAt,
		"updatedAt":            sub.UpdatedAt,
		"isExpired":            sub.IsExpired(time.Now()),
	})
}
