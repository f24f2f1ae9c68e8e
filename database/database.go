package database

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var Profiles *mongo.Collection
var Messages *mongo.Collection
var Subscriptions *mongo.Collection

func ConnectMongo() error {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		log.Warn().Msg("MONGODB_URI not set, using default localhost")
		uri = "mongodb://127.0.0.1:27017"
	}

	dbName := os.Getenv("MONGODB_DB")
	if dbName == "" {
		dbName = "trenchi"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	Client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}

	if err := Client.Ping(ctx, nil); err != nil {
		return err
	}

	db := Client.Database(dbName)
	Profiles = db.Collection("profiles")
	Messages = db.Collection("messages")
	Subscriptions = db.Collection("subscriptions")

	log.Info().Str("db", dbName).Msg("connected to MongoDB")
	return nil
}

// EnsureIndexes creates the indexes the profile and message queries rely on.
// Safe to call on every startup; Mongo treats existing indexes as a no-op.
func EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	profileIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "walletAddress", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "referralCode", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).
				SetName("referralCode_unique"),
		},
		// Candidate discovery filters on both preference directions.
		{
			Keys: bson.D{{Key: "gender", Value: 1}, {Key: "seeking", Value: 1}},
		},
		// Leaderboard sort.
		{
			Keys: bson.D{{Key: "totalPoints", Value: -1}, {Key: "createdAt", Value: 1}},
		},
	}
	if _, err := Profiles.Indexes().CreateMany(ctx, profileIndexes); err != nil {
		return err
	}

	messageIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "senderId", Value: 1},
				{Key: "receiverId", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
	}
	if _, err := Messages.Indexes().CreateMany(ctx, messageIndexes); err != nil {
		return err
	}

	subscriptionIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "walletAddress", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := Subscriptions.Indexes().CreateMany(ctx, subscriptionIndexes)
	return err
}

func DisconnectMongo() error {
	if Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := Client.Disconnect(ctx); err != nil {
		return err
	}

	log.Info().Msg("disconnected from MongoDB")
	return nil
}
