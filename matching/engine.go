package matching

import (
	"context"
	"fmt"

	"trenchi/models"

	"github.com/rs/zerolog/log"
)

// Engine applies the like/dislike/match state machine and the points and
// referral accounting on top of a ProfileStore. It is safe for concurrent
// use; mutations touching a profile pair are serialized by wallet address.
type Engine struct {
	store ProfileStore
	locks pairLocker
}

func NewEngine(store ProfileStore) *Engine {
	return &Engine{store: store}
}

// Get loads a single profile by wallet address.
func (e *Engine) Get(ctx context.Context, wallet string) (*models.Profile, error) {
	return e.store.FindByWallet(ctx, wallet)
}

// Like records that actor likes target. When the like is reciprocal the pair
// is promoted to a match: both matchedUsers sets gain the other side, the
// pending likes are cleared, and both profiles earn match points.
func (e *Engine) Like(ctx context.Context, actorWallet, targetWallet string) (isMatch bool, err error) {
	if actorWallet == targetWallet {
		return false, ErrSelfAction
	}

	unlock := e.locks.lock(actorWallet, targetWallet)
	defer unlock()

	actor, err := e.store.FindByWallet(ctx, actorWallet)
	if err != nil {
		return false, err
	}
	target, err := e.store.FindByWallet(ctx, targetWallet)
	if err != nil {
		return false, err
	}

	// A standing match already consumed the likes on both sides; letting a
	// re-like through would put the target in likedUsers and matchedUsers
	// at once and re-award match points on the next reciprocal like.
	if actor.HasMatched(targetWallet) {
		return false, ErrAlreadyMatched
	}
	if actor.HasLiked(targetWallet) {
		return false, ErrAlreadyLiked
	}

	actorBefore := actor.Clone()

	// A later like overrides an earlier dislike.
	actor.AddLiked(targetWallet)
	actor.RemoveDisliked(targetWallet)

	if target.HasLiked(actorWallet) {
		isMatch = true
		actor.AddMatched(targetWallet)
		target.AddMatched(actorWallet)
		// A match supersedes the pending likes on both sides.
		actor.RemoveLiked(targetWallet)
		target.RemoveLiked(actorWallet)
		actor.MatchCount++
		target.MatchCount++
		actor.RecomputePoints()
		target.RecomputePoints()
	}

	if err := e.store.Save(ctx, actor); err != nil {
		return false, err
	}
	if isMatch {
		if err := e.saveOrCompensate(ctx, target, actorBefore); err != nil {
			return false, err
		}
	}
	return isMatch, nil
}

// Dislike records that actor passed on target. A like cannot be downgraded
// to a dislike, and a matched pair must go through Unmatch first. Repeated
// dislikes are a no-op. Only the actor's document is written; the target is
// loaded purely to confirm it exists.
func (e *Engine) Dislike(ctx context.Context, actorWallet, targetWallet string) error {
	if actorWallet == targetWallet {
		return ErrSelfAction
	}

	unlock := e.locks.lock(actorWallet, targetWallet)
	defer unlock()

	actor, err := e.store.FindByWallet(ctx, actorWallet)
	if err != nil {
		return err
	}
	if _, err := e.store.FindByWallet(ctx, targetWallet); err != nil {
		return err
	}

	if actor.HasMatched(targetWallet) {
		return ErrAlreadyMatched
	}
	if actor.HasLiked(targetWallet) {
		return ErrCannotDislikeAfterLike
	}
	if actor.HasDisliked(targetWallet) {
		return nil
	}

	actor.AddDisliked(targetWallet)
	return e.store.Save(ctx, actor)
}

// Unmatch dissolves a match symmetrically. Points already earned are kept;
// both sides return to the none state and become candidates for each other
// again.
func (e *Engine) Unmatch(ctx context.Context, actorWallet, targetWallet string) error {
	if actorWallet == targetWallet {
		return ErrSelfAction
	}

	unlock := e.locks.lock(actorWallet, targetWallet)
	defer unlock()

	actor, err := e.store.FindByWallet(ctx, actorWallet)
	if err != nil {
		return err
	}
	target, err := e.store.FindByWallet(ctx, targetWallet)
	if err != nil {
		return err
	}

	actorBefore := actor.Clone()
	actor.RemoveMatched(targetWallet)
	target.RemoveMatched(actorWallet)

	if err := e.store.Save(ctx, actor); err != nil {
		return err
	}
	return e.saveOrCompensate(ctx, target, actorBefore)
}

// Candidates returns profiles the viewer can still swipe on: not themselves,
// not already liked/disliked/matched, and mutually compatible on
// gender/seeking in both directions.
func (e *Engine) Candidates(ctx context.Context, viewerWallet string) ([]models.Profile, error) {
	viewer, err := e.store.FindByWallet(ctx, viewerWallet)
	if err != nil {
		return nil, err
	}

	exclude := make([]string, 0, 1+len(viewer.LikedUsers)+len(viewer.DislikedUsers)+len(viewer.MatchedUsers))
	exclude = append(exclude, viewer.WalletAddress)
	exclude = append(exclude, viewer.LikedUsers...)
	exclude = append(exclude, viewer.DislikedUsers...)
	exclude = append(exclude, viewer.MatchedUsers...)

	return e.store.FindCandidates(ctx, exclude, viewer.Seeking, viewer.Gender)
}

// Matches returns the full profiles of everyone the viewer has matched with.
func (e *Engine) Matches(ctx context.Context, viewerWallet string) ([]models.Profile, error) {
	viewer, err := e.store.FindByWallet(ctx, viewerWallet)
	if err != nil {
		return nil, err
	}
	if len(viewer.MatchedUsers) == 0 {
		return []models.Profile{}, nil
	}
	return e.store.FindByWallets(ctx, viewer.MatchedUsers)
}

// Leaderboard returns up to limit profiles sorted by totalPoints descending.
func (e *Engine) Leaderboard(ctx context.Context, limit int64) ([]models.Profile, error) {
	return e.store.Leaderboard(ctx, limit)
}

// saveOrCompensate persists the second document of a two-document mutation.
// The store has no cross-document transactions, so a failed second write is
// retried once and then rolled back by restoring the first document's
// snapshot. If even the rollback fails the pair is left asymmetric and the
// inconsistency is logged for the reconciliation sweep.
func (e *Engine) saveOrCompensate(ctx context.Context, second, firstBefore *models.Profile) error {
	err := e.store.Save(ctx, second)
	if err == nil {
		return nil
	}
	if retryErr := e.store.Save(ctx, second); retryErr == nil {
		return nil
	}
	if rbErr := e.store.Save(ctx, firstBefore); rbErr != nil {
		log.Error().
			Str("wallet", firstBefore.WalletAddress).
			Str("pair", second.WalletAddress).
			Err(rbErr).
			Msg("compensating write failed, pair left asymmetric")
		return fmt.Errorf("persisting %s failed and rollback of %s failed: %w",
			second.WalletAddress, firstBefore.WalletAddress, err)
	}
	return fmt.Errorf("persisting %s: %w", second.WalletAddress, err)
}
