package escrow

import (
	"github.com/iov-one/swapvault"
	"github.com/iov-one/swapvault/errors"
)

// Program is the escrow program. Instructions are routed on their first
// byte.
type Program struct {
	handlers map[uint8]handler
}

var _ swapvault.Program = (*Program)(nil)

// NewProgram returns the escrow program with every instruction registered.
func NewProgram() *Program {
	return &Program{
		handlers: map[uint8]handler{
			TagMake:       MakeHandler{},
			TagTake:       TakeHandler{},
			TagRefund:     RefundHandler{},
			TagDelegate:   DelegateHandler{},
			TagUndelegate: UndelegateHandler{},
		},
	}
}

// RegisterProgram deploys the escrow program under ProgramID.
func RegisterProgram(r swapvault.ProgramRegistry) {
	r.Register(ProgramID, NewProgram())
}

func (p *Program) Process(ctx swapvault.Context, env swapvault.Env, accounts []*swapvault.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return errors.Wrap(errors.ErrMalformedPayload, "empty instruction")
	}
	h, ok := p.handlers[data[0]]
	if !ok {
		return errors.Wrapf(errors.ErrMalformedPayload, "unknown instruction %d", data[0])
	}
	return h.Process(ctx, env, accounts, data[1:])
}
