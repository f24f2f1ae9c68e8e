package matching

import (
	"context"
	"errors"
	"sort"
	"sync"

	"trenchi/models"
)

// MemoryStore is a ProfileStore backed by a map. It exists for tests and
// keeps the same per-document atomicity semantics as the Mongo store.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile // keyed by wallet address
	seq      int                        // insertion order, leaderboard tie break

	order map[string]int

	// FailSaveOf makes Save fail for the given wallet. Used to exercise
	// the compensation path.
	FailSaveOf string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*models.Profile),
		order:    make(map[string]int),
	}
}

func (s *MemoryStore) FindByWallet(_ context.Context, wallet string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[wallet]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) FindByWallets(_ context.Context, wallets []string) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Profile, 0, len(wallets))
	for _, w := range wallets {
		if p, ok := s.profiles[w]; ok {
			out = append(out, *p.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) FindByReferralCode(_ context.Context, code string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.ReferralCode == code {
			return p.Clone(), nil
		}
	}
	return nil, ErrProfileNotFound
}

func (s *MemoryStore) Insert(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.WalletAddress]; ok {
		return ErrDuplicateWallet
	}
	for _, existing := range s.profiles {
		if existing.ReferralCode == p.ReferralCode {
			return ErrDuplicateReferralCode
		}
	}
	s.profiles[p.WalletAddress] = p.Clone()
	s.order[p.WalletAddress] = s.seq
	s.seq++
	return nil
}

func (s *MemoryStore) Save(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.WalletAddress == s.FailSaveOf {
		return errSaveFailure
	}
	if _, ok := s.profiles[p.WalletAddress]; !ok {
		return ErrProfileNotFound
	}
	s.profiles[p.WalletAddress] = p.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, wallet string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[wallet]; !ok {
		return ErrProfileNotFound
	}
	delete(s.profiles, wallet)
	delete(s.order, wallet)
	return nil
}

func (s *MemoryStore) FindCandidates(_ context.Context, exclude []string, gender, seeking string) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	excluded := make(map[string]bool, len(exclude))
	for _, w := range exclude {
		excluded[w] = true
	}
	var out []models.Profile
	for _, p := range s.profiles {
		if excluded[p.WalletAddress] {
			continue
		}
		if p.Gender != gender || p.Seeking != seeking {
			continue
		}
		out = append(out, *p.Clone())
	}
	return out, nil
}

func (s *MemoryStore) Leaderboard(_ context.Context, limit int64) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *p.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return s.order[out[i].WalletAddress] < s.order[out[j].WalletAddress]
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) RevokeReferralCredits(_ context.Context, wallet string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		had := false
		kept := p.ReferralHistory[:0]
		for _, entry := range p.ReferralHistory {
			if entry.WalletAddress == wallet {
				had = true
				continue
			}
			kept = append(kept, entry)
		}
		if had {
			p.ReferralHistory = kept
			p.ReferralCount--
			p.RecomputePoints()
		}
	}
	return nil
}

func (s *MemoryStore) RemoveReferencesTo(_ context.Context, wallet string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		p.RemoveLiked(wallet)
		p.RemoveDisliked(wallet)
		p.RemoveMatched(wallet)
	}
	return nil
}

var errSaveFailure = errors.New("simulated save failure")
