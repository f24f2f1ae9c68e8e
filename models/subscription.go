package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PlanBasicPremium    = "Basic Premium"
	PlanExtendedPremium = "Extended Premium"
	PlanFree            = "Free"
)

type Subscription struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WalletAddress        string             `bson:"walletAddress" json:"walletAddress"`
	TransactionSignature string             `bson:"transactionSignature" json:"transactionSignature"`
	Plan                 string             `bson:"plan" json:"plan"`
	ExpirationDate       time.Time          `bson:"expirationDate" json:"expirationDate"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (s *Subscription) IsExpired(now time.Time) bool {
	return now.After(s.ExpirationDate)
}
