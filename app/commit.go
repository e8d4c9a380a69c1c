package app

import (
	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
)

// CommitStore holds the committed ledger state and the two caches
// transactions run against. Writes of DeliverTx land in the deliver cache
// and reach disk on Commit. Writes of CheckTx land in the check cache and
// are dropped on Commit.
type CommitStore struct {
	committed      swapvault.CommitKVStore
	deliver, check swapvault.KVCacheWrap
}

// NewCommitStore loads the latest version of store and branches the
// deliver and check caches from it. It panics if the store cannot be
// loaded, as no block can be processed without it.
func NewCommitStore(store swapvault.CommitKVStore) *CommitStore {
	if err := store.LoadLatestVersion(); err != nil {
		panic(errors.Wrap(err, "load latest version"))
	}
	cs := &CommitStore{committed: store}
	cs.branch()
	return cs
}

// branch replaces both caches with fresh ones over the committed state.
func (cs *CommitStore) branch() {
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
}

// CommitInfo returns the version and hash of the last commit.
func (cs *CommitStore) CommitInfo() (swapvault.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit persists the deliver cache as a new version and branches new
// caches from it. Pending CheckTx writes are discarded.
func (cs *CommitStore) Commit() (swapvault.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return swapvault.CommitID{}, errors.Wrap(err, "flush deliver cache")
	}
	cs.check.Discard()

	id, err := cs.committed.Commit()
	if err != nil {
		return id, errors.Wrap(err, "commit")
	}
	cs.branch()
	return id, nil
}

// CheckStore is the cache CheckTx runs against.
func (cs *CommitStore) CheckStore() swapvault.CacheableKVStore {
	return cs.check
}

// DeliverStore is the cache DeliverTx runs against.
func (cs *CommitStore) DeliverStore() swapvault.CacheableKVStore {
	return cs.deliver
}

// appKey returns the key of an application setting. Settings live under
// a prefix that no ledger account key can take.
func appKey(name string) []byte {
	return []byte("_sv:" + name)
}

// loadChainID returns the chain id written at genesis, or an empty string
// before InitChain ran.
func loadChainID(kv swapvault.ReadOnlyKVStore) (string, error) {
	raw, err := kv.Get(appKey("chainID"))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(raw), nil
}

// saveChainID writes the chain id once. A second call fails with
// ErrUnauthorized, even with the same id.
func saveChainID(kv swapvault.KVStore, chainID string) error {
	if !swapvault.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id %q", chainID)
	}
	current, err := loadChainID(kv)
	if err != nil {
		return err
	}
	if current != "" {
		return errors.Wrapf(errors.ErrUnauthorized, "chain id is already %q", current)
	}
	if err := kv.Set(appKey("chainID"), []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}
