package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Points awarded by the leaderboard system.
const (
	InitialPoints     = 10.0 // one-time signup bonus
	PointsPerMatch    = 2.0
	PointsPerReferral = 0.25
)

const (
	GenderMan   = "Man"
	GenderWoman = "Woman"
)

var CryptoInterests = []string{
	"Trading Memes",
	"Learning Crypto",
	"Finding Web3 Love",
	"Just for Fun",
}

var BlockchainNetworks = []string{
	"Solana",
	"Bitcoin",
	"Ethereum",
	"Binance",
	"Other",
}

// ReferralEntry records a single credited signup in the referrer's history.
type ReferralEntry struct {
	WalletAddress string    `bson:"walletAddress" json:"walletAddress"`
	Timestamp     time.Time `bson:"timestamp" json:"timestamp"`
}

// Profile is one user, keyed by wallet address. Relationship sets hold the
// wallet addresses of other profiles, never Mongo object ids.
type Profile struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	WalletAddress string             `bson:"walletAddress" json:"walletAddress"`

	Name    string `bson:"name" json:"name"`
	Age     int    `bson:"age" json:"age"`
	Gender  string `bson:"gender" json:"gender"`   // Man, Woman
	Seeking string `bson:"seeking" json:"seeking"` // Man, Woman
	Bio     string `bson:"bio" json:"bio"`

	Twitter                    string   `bson:"twitter,omitempty" json:"twitter,omitempty"`
	TradingStyle               string   `bson:"tradingStyle,omitempty" json:"tradingStyle,omitempty"`
	Location                   string   `bson:"location,omitempty" json:"location,omitempty"`
	LookingFor                 string   `bson:"lookingFor,omitempty" json:"lookingFor,omitempty"`
	FavoriteCoin               string   `bson:"favoriteCoin,omitempty" json:"favoriteCoin,omitempty"`
	TotalWalletValue           string   `bson:"totalWalletValue,omitempty" json:"totalWalletValue,omitempty"`
	TotalTrenched              string   `bson:"totalTrenched" json:"totalTrenched"`
	CryptoInterests            string   `bson:"cryptoInterests" json:"cryptoInterests"`
	FavoriteBlockchainNetworks string   `bson:"favoriteBlockchainNetworks" json:"favoriteBlockchainNetworks"`
	Images                     []string `bson:"images" json:"images"`

	LikedUsers    []string `bson:"likedUsers" json:"likedUsers"`
	DislikedUsers []string `bson:"dislikedUsers" json:"dislikedUsers"`
	MatchedUsers  []string `bson:"matchedUsers" json:"matchedUsers"`

	InitialPoints  float64 `bson:"initialPoints" json:"initialPoints"`
	MatchCount     int     `bson:"matchCount" json:"matchCount"`
	MatchPoints    float64 `bson:"matchPoints" json:"matchPoints"`
	ReferralCount  int     `bson:"referralCount" json:"referralCount"`
	ReferralPoints float64 `bson:"referralPoints" json:"referralPoints"`
	TotalPoints    float64 `bson:"totalPoints" json:"totalPoints"`

	ReferralCode    string          `bson:"referralCode" json:"referralCode"`
	ReferredBy      string          `bson:"referredBy,omitempty" json:"referredBy,omitempty"`
	ReferralHistory []ReferralEntry `bson:"referralHistory" json:"referralHistory"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// RecomputePoints rebuilds the derived point fields from their sources.
// Must be called by every mutation that touches matchCount or referralCount
// so totalPoints never drifts.
func (p *Profile) RecomputePoints() {
	p.MatchPoints = float64(p.MatchCount) * PointsPerMatch
	p.ReferralPoints = float64(p.ReferralCount) * PointsPerReferral
	p.TotalPoints = p.InitialPoints + p.MatchPoints + p.ReferralPoints
}

func (p *Profile) HasLiked(wallet string) bool    { return contains(p.LikedUsers, wallet) }
func (p *Profile) HasDisliked(wallet string) bool { return contains(p.DislikedUsers, wallet) }
func (p *Profile) HasMatched(wallet string) bool  { return contains(p.MatchedUsers, wallet) }

func (p *Profile) AddLiked(wallet string) {
	if !p.HasLiked(wallet) {
		p.LikedUsers = append(p.LikedUsers, wallet)
	}
}

func (p *Profile) AddDisliked(wallet string) {
	if !p.HasDisliked(wallet) {
		p.DislikedUsers = append(p.DislikedUsers, wallet)
	}
}

func (p *Profile) AddMatched(wallet string) {
	if !p.HasMatched(wallet) {
		p.MatchedUsers = append(p.MatchedUsers, wallet)
	}
}

func (p *Profile) RemoveLiked(wallet string)    { p.LikedUsers = remove(p.LikedUsers, wallet) }
func (p *Profile) RemoveDisliked(wallet string) { p.DislikedUsers = remove(p.DislikedUsers, wallet) }
func (p *Profile) RemoveMatched(wallet string)  { p.MatchedUsers = remove(p.MatchedUsers, wallet) }

// Clone returns a deep copy. Used to snapshot a profile before a two-document
// mutation so a failed second write can be compensated.
func (p *Profile) Clone() *Profile {
	cp := *p
	cp.Images = append([]string(nil), p.Images...)
	cp.LikedUsers = append([]string(nil), p.LikedUsers...)
	cp.DislikedUsers = append([]string(nil), p.DislikedUsers...)
	cp.MatchedUsers = append([]string(nil), p.MatchedUsers...)
	cp.ReferralHistory = append([]ReferralEntry(nil), p.ReferralHistory...)
	return &cp
}

func contains(set []string, wallet string) bool {
	for _, w := range set {
		if w == wallet {
			return true
		}
	}
	return false
}

func remove(set []string, wallet string) []string {
	out := set[:0]
	for _, w := range set {
		if w != wallet {
			out = append(out, w)
		}
	}
	return out
}
