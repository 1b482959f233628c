package state

import "sync"

const lockShards = 64

// KeyLocker serializes work per user ID using a fixed set of mutex shards.
// Two users may share a shard; one user never runs two critical sections at once.
type KeyLocker struct {
	shards [lockShards]sync.Mutex
}

// NewKeyLocker returns a ready to use locker.
func NewKeyLocker() *KeyLocker {
	return &KeyLocker{}
}

// Lock acquires the shard for userID and returns the matching unlock func.
func (l *KeyLocker) Lock(userID int64) func() {
	mu := &l.shards[shardOf(userID)]
	mu.Lock()
	return mu.Unlock
}

func shardOf(userID int64) uint64 {
	return uint64(userID) % lockShards
}
