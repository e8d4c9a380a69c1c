package store

import "github.com/iov-one/swapvault"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = swapvault.ReadOnlyKVStore
type SetDeleter = swapvault.SetDeleter
type KVStore = swapvault.KVStore
type Batch = swapvault.Batch
type Iterator = swapvault.Iterator
type CacheableKVStore = swapvault.CacheableKVStore
type KVCacheWrap = swapvault.KVCacheWrap
type CommitKVStore = swapvault.CommitKVStore
type CommitID = swapvault.CommitID

// Model groups together key and value to return
type Model struct {
	Key   []byte
	Value []byte
}

// Pair constructs a model from a key-value pair
func Pair(key, value []byte) Model {
	return Model{
		Key:   key,
		Value: value,
	}
}
