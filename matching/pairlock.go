package matching

import (
	"hash/fnv"
	"sync"
)

// pairLocker serializes mutations per wallet address using striped mutexes.
// Two concurrent operations on the same profile pair always contend on the
// same stripes, which closes the double-match race between simultaneous
// mutual likes.
type pairLocker struct {
	stripes [64]sync.Mutex
}

func (l *pairLocker) stripe(wallet string) int {
	h := fnv.New32a()
	h.Write([]byte(wallet))
	return int(h.Sum32() % uint32(len(l.stripes)))
}

// lock acquires the stripes for both wallets in index order so two
// overlapping pairs can never deadlock. The returned func releases them.
func (l *pairLocker) lock(a, b string) func() {
	i, j := l.stripe(a), l.stripe(b)
	if i > j {
		i, j = j, i
	}
	l.stripes[i].Lock()
	if j != i {
		l.stripes[j].Lock()
	}
	return func() {
		if j != i {
			l.stripes[j].Unlock()
		}
		l.stripes[i].Unlock()
	}
}

// lockOne acquires the stripe for a single wallet.
func (l *pairLocker) lockOne(wallet string) func() {
	i := l.stripe(wallet)
	l.stripes[i].Lock()
	return l.stripes[i].Unlock
}
