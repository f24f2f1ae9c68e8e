package matching

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"trenchi/models"

	"github.com/rs/zerolog/log"
)

// maxReferralCodeAttempts bounds code generation so a pathological run of
// collisions cannot loop forever.
const maxReferralCodeAttempts = 10

// CreateProfile registers a new profile for p.WalletAddress. The profile
// starts with the signup bonus and a freshly generated referral code. When
// referredByCode names an existing profile, that referrer is credited before
// the insert; a failed insert rolls the credit back.
func (e *Engine) CreateProfile(ctx context.Context, p *models.Profile, referredByCode string) (*models.Profile, error) {
	if err := validateProfile(p); err != nil {
		return nil, err
	}

	var referrer *models.Profile
	if referredByCode != "" {
		found, err := e.store.FindByReferralCode(ctx, referredByCode)
		if err != nil {
			if errors.Is(err, ErrProfileNotFound) {
				return nil, ErrInvalidReferralCode
			}
			return nil, err
		}
		if found.WalletAddress == p.WalletAddress {
			return nil, ErrSelfReferral
		}
		referrer = found
	}

	var unlock func()
	if referrer != nil {
		unlock = e.locks.lock(p.WalletAddress, referrer.WalletAddress)
	} else {
		unlock = e.locks.lockOne(p.WalletAddress)
	}
	defer unlock()

	if _, err := e.store.FindByWallet(ctx, p.WalletAddress); err == nil {
		return nil, ErrDuplicateWallet
	} else if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	var referrerBefore *models.Profile
	if referrer != nil {
		// Re-read under the lock; the pre-lock copy may be stale.
		fresh, err := e.store.FindByReferralCode(ctx, referredByCode)
		if err != nil {
			if errors.Is(err, ErrProfileNotFound) {
				return nil, ErrInvalidReferralCode
			}
			return nil, err
		}
		referrer = fresh
		referrerBefore = referrer.Clone()

		referrer.ReferralCount++
		referrer.ReferralHistory = append(referrer.ReferralHistory, models.ReferralEntry{
			WalletAddress: p.WalletAddress,
			Timestamp:     time.Now().UTC(),
		})
		referrer.RecomputePoints()
		if err := e.store.Save(ctx, referrer); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	p.InitialPoints = models.InitialPoints
	p.MatchCount = 0
	p.ReferralCount = 0
	p.RecomputePoints()
	p.ReferredBy = referredByCode
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []string{}
	}
	p.LikedUsers = []string{}
	p.DislikedUsers = []string{}
	p.MatchedUsers = []string{}
	p.ReferralHistory = []models.ReferralEntry{}
	if p.TotalTrenched == "" {
		p.TotalTrenched = "Coming Soon"
	}
	if p.CryptoInterests == "" {
		p.CryptoInterests = models.CryptoInterests[0]
	}
	if p.FavoriteBlockchainNetworks == "" {
		p.FavoriteBlockchainNetworks = models.BlockchainNetworks[0]
	}

	insertErr := ErrReferralCodeExhausted
	for attempt := 0; attempt < maxReferralCodeAttempts; attempt++ {
		code, err := e.generateReferralCode(ctx, p.WalletAddress)
		if err != nil {
			insertErr = err
			break
		}
		p.ReferralCode = code
		insertErr = e.store.Insert(ctx, p)
		if !errors.Is(insertErr, ErrDuplicateReferralCode) {
			break
		}
	}
	if errors.Is(insertErr, ErrDuplicateReferralCode) {
		insertErr = ErrReferralCodeExhausted
	}
	if insertErr != nil {
		if referrer != nil {
			if rbErr := e.store.Save(ctx, referrerBefore); rbErr != nil {
				log.Error().
					Str("wallet", referrer.WalletAddress).
					Err(rbErr).
					Msg("could not roll back referral credit after failed insert")
			}
		}
		return nil, insertErr
	}
	return p, nil
}

// UpdateProfile applies a partial update to the descriptive fields of an
// existing profile. Relationship sets, points and referral metadata are not
// editable through this path.
func (e *Engine) UpdateProfile(ctx context.Context, wallet string, patch *models.Profile) (*models.Profile, error) {
	unlock := e.locks.lockOne(wallet)
	defer unlock()

	p, err := e.store.FindByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}

	if patch.Name != "" {
		p.Name = patch.Name
	}
	if patch.Age != 0 {
		p.Age = patch.Age
	}
	if patch.Gender != "" {
		p.Gender = patch.Gender
	}
	if patch.Seeking != "" {
		p.Seeking = patch.Seeking
	}
	if patch.Bio != "" {
		p.Bio = patch.Bio
	}
	if patch.Twitter != "" {
		p.Twitter = patch.Twitter
	}
	if patch.TradingStyle != "" {
		p.TradingStyle = patch.TradingStyle
	}
	if patch.Location != "" {
		p.Location = patch.Location
	}
	if patch.LookingFor != "" {
		p.LookingFor = patch.LookingFor
	}
	if patch.FavoriteCoin != "" {
		p.FavoriteCoin = patch.FavoriteCoin
	}
	if patch.TotalWalletValue != "" {
		p.TotalWalletValue = patch.TotalWalletValue
	}
	if patch.CryptoInterests != "" {
		p.CryptoInterests = patch.CryptoInterests
	}
	if patch.FavoriteBlockchainNetworks != "" {
		p.FavoriteBlockchainNetworks = patch.FavoriteBlockchainNetworks
	}
	if len(patch.Images) > 0 {
		p.Images = patch.Images
	}

	if err := validateProfile(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()
	if err := e.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProfile removes a profile and cleans up every trace of it: referral
// credits granted for this signup are reversed and the wallet is pulled from
// all other relationship sets. The cleanup steps are independent
// per-document updates, not one transaction.
func (e *Engine) DeleteProfile(ctx context.Context, wallet string) error {
	unlock := e.locks.lockOne(wallet)
	defer unlock()

	if err := e.store.Delete(ctx, wallet); err != nil {
		return err
	}
	if err := e.store.RevokeReferralCredits(ctx, wallet); err != nil {
		return fmt.Errorf("reversing referral credits for %s: %w", wallet, err)
	}
	if err := e.store.RemoveReferencesTo(ctx, wallet); err != nil {
		return fmt.Errorf("removing relationship references to %s: %w", wallet, err)
	}
	return nil
}

// generateReferralCode builds a candidate code from a deterministic wallet
// prefix and a random three digit suffix, retrying on collisions up to the
// attempt cap.
func (e *Engine) generateReferralCode(ctx context.Context, wallet string) (string, error) {
	prefix := wallet
	if len(prefix) > 2 {
		prefix = prefix[2:]
	}
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	prefix = strings.ToUpper(prefix)

	for attempt := 0; attempt < maxReferralCodeAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(1000))
		if err != nil {
			return "", err
		}
		code := fmt.Sprintf("%s%03d", prefix, n.Int64())

		_, err = e.store.FindByReferralCode(ctx, code)
		if errors.Is(err, ErrProfileNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", ErrReferralCodeExhausted
}

func validateProfile(p *models.Profile) error {
	switch {
	case p.WalletAddress == "":
		return fmt.Errorf("%w: walletAddress is required", ErrValidation)
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case p.Age <= 0:
		return fmt.Errorf("%w: age is required", ErrValidation)
	case p.Bio == "":
		return fmt.Errorf("%w: bio is required", ErrValidation)
	}
	if p.Gender != models.GenderMan && p.Gender != models.GenderWoman {
		return fmt.Errorf("%w: gender must be Man or Woman", ErrValidation)
	}
	if p.Seeking != models.GenderMan && p.Seeking != models.GenderWoman {
		return fmt.Errorf("%w: seeking must be Man or Woman", ErrValidation)
	}
	return nil
}
