package app

import (
	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
	"github.com/iov-one/swapvault/runtime"
)

// QueryHandler answers a query against a read only view of the committed
// state.
type QueryHandler interface {
	Query(db swapvault.ReadOnlyKVStore, mod string, data []byte) (key, value []byte, err error)
}

// QueryRouter dispatches queries by path.
type QueryRouter struct {
	routes map[string]QueryHandler
}

// NewQueryRouter returns a router with the account query registered.
func NewQueryRouter() *QueryRouter {
	r := &QueryRouter{routes: make(map[string]QueryHandler)}
	r.Register("/account", AccountQuery{})
	return r
}

// Register adds a handler for path. It panics when path is taken.
func (r *QueryRouter) Register(path string, h QueryHandler) {
	if _, ok := r.routes[path]; ok {
		panic(errors.Wrapf(errors.ErrDuplicate, "query path %q", path))
	}
	r.routes[path] = h
}

// Handler returns the handler of path or nil.
func (r *QueryRouter) Handler(path string) QueryHandler {
	return r.routes[path]
}

// AccountQuery returns the account at the base58 address given as data.
// The value is the serialized account.
type AccountQuery struct{}

func (AccountQuery) Query(db swapvault.ReadOnlyKVStore, mod string, data []byte) ([]byte, []byte, error) {
	address, err := swapvault.ParsePubkey(string(data))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	acct, err := runtime.AccountBucket{}.Get(db, address)
	if err != nil {
		return nil, nil, err
	}
	if acct == nil {
		return nil, nil, errors.Wrapf(errors.ErrNotFound, "account %s", address)
	}
	raw, err := acct.Marshal()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return runtime.AccountKey(address), raw, nil
}
