package matching

import (
	"context"

	"trenchi/models"
)

// ProfileStore is the persistence surface the engine needs. The production
// implementation lives in the database package; tests use MemoryStore.
//
// Every write is atomic per document only. Cross-document consistency is the
// engine's job (pair locks plus compensating writes).
type ProfileStore interface {
	// FindByWallet returns ErrProfileNotFound when no profile exists.
	FindByWallet(ctx context.Context, wallet string) (*models.Profile, error)

	// FindByWallets returns the profiles for the given wallets, skipping
	// any that do not exist.
	FindByWallets(ctx context.Context, wallets []string) ([]models.Profile, error)

	// FindByReferralCode returns ErrProfileNotFound when no profile owns
	// the code.
	FindByReferralCode(ctx context.Context, code string) (*models.Profile, error)

	// Insert creates a new profile. Returns ErrDuplicateWallet or
	// ErrDuplicateReferralCode on unique index violations.
	Insert(ctx context.Context, p *models.Profile) error

	// Save replaces the stored document for p's wallet address.
	// Returns ErrProfileNotFound if the profile vanished.
	Save(ctx context.Context, p *models.Profile) error

	// Delete removes the profile. Returns ErrProfileNotFound when absent.
	Delete(ctx context.Context, wallet string) error

	// FindCandidates returns profiles whose wallet is not in exclude,
	// whose gender equals gender and whose seeking equals seeking.
	FindCandidates(ctx context.Context, exclude []string, gender, seeking string) ([]models.Profile, error)

	// Leaderboard returns up to limit profiles ordered by totalPoints
	// descending, ties broken by creation order.
	Leaderboard(ctx context.Context, limit int64) ([]models.Profile, error)

	// RevokeReferralCredits removes the referral history entry for wallet
	// from every referrer and reverses the points credited for it.
	RevokeReferralCredits(ctx context.Context, wallet string) error

	// RemoveReferencesTo pulls wallet out of every other profile's
	// liked/disliked/matched sets. No points are reversed.
	RemoveReferencesTo(ctx context.Context, wallet string) error
}
