package handlers

import (
	"context"
	"net/http"
	"time"

	"trenchi/database"
	"trenchi/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func optionsSortTimestampAsc() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// SendMessage stores a chat message from the authenticated wallet.
func SendMessage(c *gin.Context) {
	sender := c.GetString("walletAddress")

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiverId and content are required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	msg := models.Message{
		ID:         primitive.NewObjectID(),
		SenderID:   sender,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		Timestamp:  time.Now().UTC(),
		Read:       false,
	}
	if _, err := database.Messages.InsertOne(ctx, msg); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

// GetChatHistory returns the conversation between the authenticated wallet
// and another wallet, oldest first, and marks the other side's messages read.
func GetChatHistory(c *gin.Context) {
	wallet := c.GetString("walletAddress")
	other := c.Param("walletAddress")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	cursor, err := database.Messages.Find(ctx, bson.M{
		"$or": []bson.M{
			{"senderId": wallet, "receiverId": other},
			{"senderId": other, "receiverId": wallet},
		},
	}, optionsSortTimestampAsc())
	if err != nil {
		respondError(c, err)
		return
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		respondError(c, err)
		return
	}

	_, err = database.Messages.UpdateMany(ctx,
		bson.M{"senderId": other, "receiverId": wallet, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// GetConversations returns one row per counterpart the authenticated wallet
// has exchanged messages with: last message, its timestamp, and the number
// of unread messages.
func GetConversations(c *gin.Context) {
	wallet := c.GetString("walletAddress")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"$or": []bson.M{
				{"senderId": wallet},
				{"receiverId": wallet},
			},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$senderId", wallet}},
				"$receiverId",
				"$senderId",
			}},
			"lastMessage": bson.M{"$last": "$content"},
			"timestamp":   bson.M{"$last": "$timestamp"},
			"unreadCount": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$receiverId", wallet}},
					bson.M{"$eq": bson.A{"$read", false}},
				}},
				1,
				0,
			}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}}}},
	}

	cursor, err := database.Messages.Aggregate(ctx, pipeline)
	if err != nil {
		respondError(c, err)
		return
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Wallet      string    `bson:"_id"`
		LastMessage string    `bson:"lastMessage"`
		Timestamp   time.Time `bson:"timestamp"`
		UnreadCount int       `bson:"unreadCount"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		respondError(c, err)
		return
	}

	conversations := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		name := "Unknown User"
		var photos []string
		if profile, err := engine.Get(ctx, row.Wallet); err == nil {
			name = profile.Name
			photos = profile.Images
		}
		conversations = append(conversations, gin.H{
			"walletAddress": row.Wallet,
			"name":          name,
			"photos":        photos,
			"lastMessage":   row.LastMessage,
			"timestamp":     row.Timestamp,
			"unreadCount":   row.UnreadCount,
		})
	}

	c.JSON(http.StatusOK, conversations)
}
