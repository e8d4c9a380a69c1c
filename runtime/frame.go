package runtime

import (
	"bytes"
	"math/bits"

	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
)

// frame is a single program call. It remembers the state of every account
// the program received so the ownership rules can be checked once the
// program returns.
type frame struct {
	program swapvault.Pubkey
	infos   []*swapvault.AccountInfo

	// keys lists every distinct account in the order it was first passed.
	keys     []swapvault.Pubkey
	accounts map[swapvault.Pubkey]*swapvault.Account
	signer   map[swapvault.Pubkey]bool
	writable map[swapvault.Pubkey]bool
	pre      map[swapvault.Pubkey]snapshot
}

type snapshot struct {
	lamports   uint64
	data       []byte
	owner      swapvault.Pubkey
	executable bool
}

func takeSnapshot(a *swapvault.Account) snapshot {
	return snapshot{
		lamports:   a.Lamports,
		data:       append([]byte(nil), a.Data...),
		owner:      a.Owner,
		executable: a.Executable,
	}
}

func newFrame(program swapvault.Pubkey, infos []*swapvault.AccountInfo) *frame {
	f := &frame{
		program:  program,
		infos:    infos,
		accounts: make(map[swapvault.Pubkey]*swapvault.Account, len(infos)),
		signer:   make(map[swapvault.Pubkey]bool, len(infos)),
		writable: make(map[swapvault.Pubkey]bool, len(infos)),
	}
	for _, info := range infos {
		if _, ok := f.accounts[info.Key]; !ok {
			f.keys = append(f.keys, info.Key)
			f.accounts[info.Key] = info.Account()
		}
		f.signer[info.Key] = f.signer[info.Key] || info.IsSigner
		f.writable[info.Key] = f.writable[info.Key] || info.IsWritable
	}
	f.snapshot()
	return f
}

// snapshot makes the current state the reference for the next verify.
func (f *frame) snapshot() {
	f.pre = make(map[swapvault.Pubkey]snapshot, len(f.keys))
	for _, k := range f.keys {
		f.pre[k] = takeSnapshot(f.accounts[k])
	}
}

func (f *frame) has(key swapvault.Pubkey) bool {
	_, ok := f.accounts[key]
	return ok
}

// verify checks every change made since the last snapshot against the
// ownership rules.
func (f *frame) verify() error {
	var beforeHi, beforeLo, afterHi, afterLo uint64
	for _, k := range f.keys {
		pre, post := f.pre[k], f.accounts[k]

		var carry uint64
		beforeLo, carry = bits.Add64(beforeLo, pre.lamports, 0)
		beforeHi += carry
		afterLo, carry = bits.Add64(afterLo, post.Lamports, 0)
		afterHi += carry

		ownerChanged := pre.owner != post.Owner
		dataChanged := !bytes.Equal(pre.data, post.Data)
		lamportsChanged := pre.lamports != post.Lamports

		if pre.executable != post.Executable {
			return errors.Wrapf(errors.ErrUnauthorized, "executable flag of %s changed", k)
		}
		if !f.writable[k] && (ownerChanged || dataChanged || lamportsChanged) {
			return errors.Wrapf(errors.ErrUnauthorized, "read-only account %s modified", k)
		}
		if ownerChanged {
			if pre.owner != f.program {
				return errors.Wrapf(errors.ErrUnauthorized, "%s reassigned %s owned by %s", f.program, k, pre.owner)
			}
			if !isZeroed(post.Data) {
				return errors.Wrapf(errors.ErrUnauthorized, "%s reassigned with data", k)
			}
		}
		if dataChanged && pre.owner != f.program {
			return errors.Wrapf(errors.ErrUnauthorized, "%s modified data of %s owned by %s", f.program, k, pre.owner)
		}
		if post.Lamports < pre.lamports && pre.owner != f.program {
			return errors.Wrapf(errors.ErrUnauthorized, "%s debited %s owned by %s", f.program, k, pre.owner)
		}
	}
	if beforeHi != afterHi || beforeLo != afterLo {
		return errors.Wrapf(errors.ErrInvalidState, "%s did not conserve lamports", f.program)
	}
	return nil
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
