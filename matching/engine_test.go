package matching

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"trenchi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() (*Engine, *MemoryStore) {
	store := NewMemoryStore()
	return NewEngine(store), store
}

func newProfile(wallet, gender, seeking string) *models.Profile {
	return &models.Profile{
		WalletAddress: wallet,
		Name:          "Test " + wallet,
		Age:           27,
		Gender:        gender,
		Seeking:       seeking,
		Bio:           "gm",
	}
}

func mustCreate(t *testing.T, e *Engine, wallet, gender, seeking string) *models.Profile {
	t.Helper()
	p, err := e.CreateProfile(context.Background(), newProfile(wallet, gender, seeking), "")
	require.NoError(t, err)
	return p
}

// assertInvariants checks the cross-profile invariants that must hold after
// every mutation: match symmetry, relation disjointness, and the points
// identity.
func assertInvariants(t *testing.T, store *MemoryStore) {
	t.Helper()
	ctx := context.Background()

	all, err := store.Leaderboard(ctx, 0)
	require.NoError(t, err)

	byWallet := make(map[string]models.Profile, len(all))
	for _, p := range all {
		byWallet[p.WalletAddress] = p
	}

	for _, p := range all {
		assert.Equal(t, p.InitialPoints+p.MatchPoints+p.ReferralPoints, p.TotalPoints,
			"points identity violated for %s", p.WalletAddress)

		for _, other := range p.MatchedUsers {
			otherProfile := byWallet[other]
			assert.True(t, otherProfile.HasMatched(p.WalletAddress),
				"match %s -> %s not symmetric", p.WalletAddress, other)
		}

		for _, other := range p.LikedUsers {
			assert.False(t, p.HasDisliked(other), "%s both liked and disliked %s", p.WalletAddress, other)
			assert.False(t, p.HasMatched(other), "%s both liked and matched %s", p.WalletAddress, other)
		}
		for _, other := range p.DislikedUsers {
			assert.False(t, p.HasMatched(other), "%s both disliked and matched %s", p.WalletAddress, other)
		}
	}
}

func TestLikeWithoutReciprocityIsNotAMatch(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()

	mustCreate(t, e, "0xALICE", models.GenderMan, models.GenderWoman)
	mustCreate(t, e, "0xBOB", models.GenderWoman, models.GenderMan)

	isMatch, err := e.Like(ctx, "0xALICE", "0xBOB")
	require.NoError(t, err)
	assert.False(t, isMatch)

	alice, err := e.Get(ctx, "0xALICE")
	require.NoError(t, err)
	assert.True(t, alice.HasLiked("0xBOB"))
	assert.Equal(t, 0, alice.MatchCount)

	bob, err := e.Get(ctx, "0xBOB")
	require.NoError(t, err)
	assert.Empty(t, bob.LikedUsers)
	assert.Empty(t, bob.MatchedUsers)

	assertInvariants(t, store)
}

func TestMutualLikePromotesToMatch(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()

	mustCreate(t, e, "0xALICE", models.GenderMan, models.GenderWoman)
	mustCreate(t, e, "0xBOB", models.GenderWoman, models.GenderMan)

	isMatch, err := e.Like(ctx, "0xALICE", "0xBOB")
	require.NoError(t, err)
	assert.False(t, isMatch)

	isMatch, err = e.Like(ctx, "0xBOB", "0xALICE")
	require.NoError(t, err)
	assert.True(t, isMatch)

	alice, _ := e.Get(ctx, "0xALICE")
	bob, _ := e.Get(ctx, "0xBOB")

	assert.True(t, alice.HasMatched("0xBOB"))
	assert.True(t, bob.HasMatched("0xALICE"))
	// The pending likes are superseded by the match.
	assert.False(t, alice.HasLiked("0xBOB"))
	assert.False(t, bob.HasLiked("0xALICE"))

	assert.Equal(t, 1, alice.MatchCount)
	assert.Equal(t, 1, bob.MatchCount)
	assert.Equal(t, 2.0, alice.MatchPoints)
	assert.Equal(t, 2.0, bob.MatchPoints)
	assert.Equal(t, 12.0, alice.TotalPoints)
	assert.Equal(t, 12.0, bob.TotalPoints)

	assertInvariants(t, store)
}

func TestDuplicateLikeRejected(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	mustCreate(t, e, "0xALICE", models.GenderMan, models.GenderWoman)
	mustCreate(t, e, "0xBOB", models.GenderWoman, models.GenderMan)

	_, err := e.Like(ctx, "0xALICE", "0xBOB")
	require.NoError(t, err)

	before, _ := e.Get(ctx, "0xALICE")

	_, err = e.Like(ctx, "0xALICE", "0xBOB")
	assert.ErrorIs(t, err, ErrAlreadyLiked)

	after, _ := e.Get(ctx, "0xALICE")
	assert.Equal(t, before.LikedUsers, after.LikedUsers)
	assert.Equal(t, before.TotalPoints, after.TotalPoints)
}

func TestSelfActionsRejected(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	mustCreate(t, e, "0xALICE", models.GenderMan, models.GenderWoman)

	_, err := e.Like(ctx, "0xALICE", "0xALICE")
	assert.ErrorIs(t, err, ErrSelfAction)
	assert.ErrorIs(t, e.Dislike(ctx, "0xALICE", "0xALICE"), ErrSelfAction)
	assert.ErrorIs(t, e.Unmatch(ctx, "0xALICE", "0xALICE"), ErrSelfAction)
}

func TestLikeMissingProfile(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	mustCreate(t, e, "0xALICE", models.GenderMan, models.GenderWoman)

	_, err := e.Like(ctx, "0xALICE", "0xGHOST")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = e.Like(ctx, "0xGHOST", "0xALICE")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestDislikeAfterLikeForbidden(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	mustCreate(t, e, "0xALICE", models.GenderMan, models.GenderWoman)
	mustCreate(t, e, "0xBOB", models.GenderWoman, models.GenderMan)

	_, err := e.Like(ctx, "0xALICE", "0xBOB")
	require.NoError(t, err)

	err = e.Dislike(ctx, "0xALICE", "0xBOB")
	assert.ErrorIs(t, err, ErrCannotDislikeAfterLike)
}

func TestDislikeIsIdempotentAndOneDirectional(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()

	mustCreate(t, e, "0xALICE", models.GenderMan, models.GenderWoman)
	mustCreate(t, e, "0xBOB", models.GenderWoman, models.GenderMan)

	require.NoError(t, e.Dislike(ctx, "0xALICE", "0xBOB"))
	require.NoError(t, e.Dislike(ctx, "0xALICE", "0xBOB"))

	alice, _ := e.Get(ctx, "0xALICE")
	assert.Equal(t, []string{"0xBOB"}, alice.DislikedUsers)

	bob, _ := e.Get(ctx, "0xBOB")
	assert.Empty(t, bob.DislikedUsers)
	assert.Empty(t, bob.LikedUsers)

	assertInvariants(t, store)
}

func TestLikeWhileMatchedRejected(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()

	mustCreate(t, e, "0xALICE", models.GenderMan, models.GenderWoman)
	mustCreate(t, e, "0xBOB", models.GenderWoman, models.GenderMan)

	_, err := e.Like(ctx, "0xALICE", "0xBOB")
	require.NoError(t, err)
	_, err = e.Like(ctx, "0xBOB", "0xALICE")
	require.NoError(t, err)

	// The match cleared both pending likes, so without the matched guard a
	// re-like would slip past the already-liked check and the reciprocal
	// re-like would award match points a second time.
	_, err = e.Like(ctx, "0xALICE", "0xBOB")
	assert.ErrorIs(t, err, ErrAlreadyMatched)
	_, err = e.Like(ctx, "0xBOB", "0xALICE")
	assert.ErrorIs(t, err, ErrAlreadyMatched)

	alice, _ := e.Get(ctx, "0xALICE")
	bob, _ := e.Get(ctx, "0xBOB")
	assert.False(t, alice.HasLiked("0xBOB"))
	assert.False(t, bob.HasLiked("0xALICE"))
	assert.Equal(t, 1, alice.MatchCount)
	assert.Equal(t, 1, bob.MatchCount)
	assert.Equal(t, 12.0, alice.TotalPoints)
	assert.Equal(t, 12.0, bob.TotalPoints)

	assertInvariants(t, store)
}

func TestDislikeWhileMatchedRejected(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()

	mustCreate(t, e, "0xALICE", models.GenderMan, models.GenderWoman)
	mustCreate(t, e, "0xBOB", models.GenderWoman, models.GenderMan)

	_, err := e.Like(ctx, "0xALICE", "0xBOB")
	require.NoError(t, err)
	_, err = e.Like(ctx, "0xBOB", "0xALICE")
	require.NoError(t, err)

	// A matched pair must go through Unmatch; a direct dislike would leave
	// the target in dislikedUsers and matchedUsers at once.
	assert.ErrorIs(t, e.Dislike(ctx, "0xALICE", "0xBOB"), ErrAlreadyMatched)

	alice, _ := e.Get(ctx, "0xALICE")
	assert.Empty(t, alice.DislikedUsers)
	assert.True(t, alice.HasMatched("0xBOB"))

	assertInvariants(t, store)
}

func TestDislikeThenLikeChangesMind(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()

	mustCreate(t, e, "0xALICE", models.GenderMan, models.GenderWoman)
	mustCreate(t, e, "0xBOB", models.GenderWoman, models.GenderMan)

	require.NoError(t, e.Dislike(ctx, "0xALICE", "0xBOB"))

	isMatch, err := e.Like(ctx, "0xALICE", "0xBOB")
	require.NoError(t, err)
	assert.False(t, isMatch)

	alice, _ := e.Get(ctx, "0xALICE")
	assert.True(t, alice.HasLiked("0xBOB"))
	assert.False(t, alice.HasDisliked("0xBOB"))

	assertInvariants(t, store)
}

func TestUnmatchKeepsPointsAndRestoresCandidacy(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()

	mustCreate(t, e, "0xALICE", models.GenderMan, models.GenderWoman)
	mustCreate(t, e, "0xBOB", models.GenderWoman, models.GenderMan)

	_, err := e.Like(ctx, "0xALICE", "0xBOB")
	require.NoError(t, err)
	_, err = e.Like(ctx, "0xBOB", "0xALICE")
	require.NoError(t, err)

	require.NoError(t, e.Unmatch(ctx, "0xALICE", "0xBOB"))

	alice, _ := e.Get(ctx, "0xALICE")
	bob, _ := e.Get(ctx, "0xBOB")

	assert.False(t, alice.HasMatched("0xBOB"))
	assert.False(t, bob.HasMatched("0xALICE"))
	// Match points represent historical achievement; unmatching keeps them.
	assert.Equal(t, 1, alice.MatchCount)
	assert.Equal(t, 12.0, alice.TotalPoints)
	assert.Equal(t, 12.0, bob.TotalPoints)

	// Both sides return to the none state and can discover each other again.
	candidates, err := e.Candidates(ctx, "0xALICE")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "0xBOB", candidates[0].WalletAddress)

	assertInvariants(t, store)
}

func TestCandidatesFiltering(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	mustCreate(t, e, "0xALICE", models.GenderMan, models.GenderWoman)

	mustCreate(t, e, "0xLIKED", models.GenderWoman, models.GenderMan)
	mustCreate(t, e, "0xDISLIKED", models.GenderWoman, models.GenderMan)
	mustCreate(t, e, "0xMATCHED", models.GenderWoman, models.GenderMan)
	mustCreate(t, e, "0xFRESH", models.GenderWoman, models.GenderMan)

	// Wrong direction: gender matches what Alice seeks, but they seek women.
	mustCreate(t, e, "0xONEWAY", models.GenderWoman, models.GenderWoman)
	// Wrong gender entirely.
	mustCreate(t, e, "0xOTHERMAN", models.GenderMan, models.GenderWoman)

	_, err := e.Like(ctx, "0xALICE", "0xLIKED")
	require.NoError(t, err)
	require.NoError(t, e.Dislike(ctx, "0xALICE", "0xDISLIKED"))
	_, err = e.Like(ctx, "0xALICE", "0xMATCHED")
	require.NoError(t, err)
	_, err = e.Like(ctx, "0xMATCHED", "0xALICE")
	require.NoError(t, err)

	candidates, err := e.Candidates(ctx, "0xALICE")
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "0xFRESH", candidates[0].WalletAddress)
}

func TestConcurrentMutualLikeFormsExactlyOneMatch(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		e, store := newTestEngine()
		a := fmt.Sprintf("0xA%03d", i)
		b := fmt.Sprintf("0xB%03d", i)
		mustCreate(t, e, a, models.GenderMan, models.GenderWoman)
		mustCreate(t, e, b, models.GenderWoman, models.GenderMan)

		var wg sync.WaitGroup
		results := make([]bool, 2)
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			results[0], errs[0] = e.Like(ctx, a, b)
		}()
		go func() {
			defer wg.Done()
			results[1], errs[1] = e.Like(ctx, b, a)
		}()
		wg.Wait()
		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		pa, _ := e.Get(ctx, a)
		pb, _ := e.Get(ctx, b)

		// Exactly one of the two likes observes reciprocity.
		assert.NotEqual(t, results[0], results[1])
		assert.Equal(t, 1, pa.MatchCount)
		assert.Equal(t, 1, pb.MatchCount)
		assert.Equal(t, 12.0, pa.TotalPoints)
		assert.Equal(t, 12.0, pb.TotalPoints)
		assertInvariants(t, store)
	}
}

func TestSecondWriteFailureRollsBackFirst(t *testing.T) {
	e, store := newTestEngine()
	ctx := context.Background()

	mustCreate(t, e, "0xALICE", models.GenderMan, models.GenderWoman)
	mustCreate(t, e, "0xBOB", models.GenderWoman, models.GenderMan)

	_, err := e.Like(ctx, "0xBOB", "0xALICE")
	require.NoError(t, err)

	// The reciprocal like now needs to persist both documents; make the
	// second one fail.
	store.FailSaveOf = "0xBOB"
	_, err = e.Like(ctx, "0xALICE", "0xBOB")
	require.Error(t, err)
	store.FailSaveOf = ""

	alice, _ := e.Get(ctx, "0xALICE")
	bob, _ := e.Get(ctx, "0xBOB")

	// Alice's write was compensated: no half-formed match on either side.
	assert.False(t, alice.HasMatched("0xBOB"))
	assert.False(t, bob.HasMatched("0xALICE"))
	assert.Equal(t, 0, alice.MatchCount)
	assert.Equal(t, 0, bob.MatchCount)
	assertInvariants(t, store)
}

func TestLeaderboardOrderAndLimit(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	mustCreate(t, e, "0xFIRST", models.GenderMan, models.GenderWoman)
	mustCreate(t, e, "0xSECOND", models.GenderWoman, models.GenderMan)
	mustCreate(t, e, "0xTHIRD", models.GenderWoman, models.GenderMan)

	// A match lifts FIRST and SECOND above THIRD.
	_, err := e.Like(ctx, "0xFIRST", "0xSECOND")
	require.NoError(t, err)
	_, err = e.Like(ctx, "0xSECOND", "0xFIRST")
	require.NoError(t, err)

	board, err := e.Leaderboard(ctx, 100)
	require.NoError(t, err)
	require.Len(t, board, 3)
	// Ties between FIRST and SECOND break by creation order.
	assert.Equal(t, "0xFIRST", board[0].WalletAddress)
	assert.Equal(t, "0xSECOND", board[1].WalletAddress)
	assert.Equal(t, "0xTHIRD", board[2].WalletAddress)

	board, err = e.Leaderboard(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, board, 2)
}
