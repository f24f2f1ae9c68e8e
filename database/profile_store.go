package database

import (
	"context"
	"strings"

	"trenchi/matching"
	"trenchi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProfileStore implements matching.ProfileStore on the profiles
// collection. Each method is a single collection operation; cross-document
// consistency is handled by the matching engine.
type MongoProfileStore struct {
	coll *mongo.Collection
}

func NewMongoProfileStore() *MongoProfileStore {
	return &MongoProfileStore{coll: Profiles}
}

var _ matching.ProfileStore = (*MongoProfileStore)(nil)

func (s *MongoProfileStore) FindByWallet(ctx context.Context, wallet string) (*models.Profile, error) {
	var p models.Profile
	err := s.coll.FindOne(ctx, bson.M{"walletAddress": wallet}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, matching.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MongoProfileStore) FindByWallets(ctx context.Context, wallets []string) ([]models.Profile, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"walletAddress": bson.M{"$in": wallets}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.Profile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *MongoProfileStore) FindByReferralCode(ctx context.Context, code string) (*models.Profile, error) {
	var p models.Profile
	err := s.coll.FindOne(ctx, bson.M{"referralCode": code}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, matching.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MongoProfileStore) Insert(ctx context.Context, p *models.Profile) error {
	_, err := s.coll.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "referralCode") {
				return matching.ErrDuplicateReferralCode
			}
			return matching.ErrDuplicateWallet
		}
		return err
	}
	return nil
}

func (s *MongoProfileStore) Save(ctx context.Context, p *models.Profile) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"walletAddress": p.WalletAddress}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return matching.ErrProfileNotFound
	}
	return nil
}

func (s *MongoProfileStore) Delete(ctx context.Context, wallet string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"walletAddress": wallet})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return matching.ErrProfileNotFound
	}
	return nil
}

func (s *MongoProfileStore) FindCandidates(ctx context.Context, exclude []string, gender, seeking string) ([]models.Profile, error) {
	filter := bson.M{
		"walletAddress": bson.M{"$nin": exclude},
		"gender":        gender,
		"seeking":       seeking,
	}
	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.Profile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *MongoProfileStore) Leaderboard(ctx context.Context, limit int64) ([]models.Profile, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "totalPoints", Value: -1}, {Key: "createdAt", Value: 1}}).
		SetLimit(limit)
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.Profile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *MongoProfileStore) RevokeReferralCredits(ctx context.Context, wallet string) error {
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"referralHistory.walletAddress": wallet},
		bson.M{
			"$pull": bson.M{"referralHistory": bson.M{"walletAddress": wallet}},
			"$inc": bson.M{
				"referralCount":  -1,
				"referralPoints": -models.PointsPerReferral,
				"totalPoints":    -models.PointsPerReferral,
			},
		},
	)
	return err
}

func (s *MongoProfileStore) RemoveReferencesTo(ctx context.Context, wallet string) error {
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"$or": []bson.M{
			{"likedUsers": wallet},
			{"dislikedUsers": wallet},
			{"matchedUsers": wallet},
		}},
		bson.M{"$pull": bson.M{
			"likedUsers":    wallet,
			"dislikedUsers": wallet,
			"matchedUsers":  wallet,
		}},
	)
	return err
}
