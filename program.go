package swapvault

// Program is the executable logic behind a program id. Process receives the
// accounts of an instruction in the order the instruction lists them.
//
// A failed Process aborts the whole transaction: none of the account
// changes made by it, its callers or its callees are persisted.
type Program interface {
	Process(ctx Context, env Env, accounts []*AccountInfo, data []byte) error
}

// Env is the host as seen by a running program.
type Env interface {
	// ProgramID is the id of the program being executed.
	ProgramID() Pubkey

	// Rent returns the rent parameters of the chain.
	Rent() Rent

	// Invoke synchronously calls another program. Every account the
	// instruction names must have been passed to the caller. Signer
	// status may only be granted for accounts that signed the caller or
	// for addresses one of the given authorities derives.
	Invoke(ctx Context, ix Instruction, signers ...Authority) error

	// LoadConfig reads the on-chain configuration stored for pkg into
	// dst. It fails with ErrNotFound when genesis did not provide one.
	LoadConfig(pkg string, dst interface{}) error
}

// ProgramRegistry is the setup side of the host: programs are registered
// under their id before any transaction runs.
type ProgramRegistry interface {
	Register(id Pubkey, p Program)
}

// AccountMeta describes how an instruction uses an account.
type AccountMeta struct {
	Pubkey     Pubkey
	IsSigner   bool
	IsWritable bool
}

// Writable returns the meta of an account the instruction modifies.
func Writable(key Pubkey, signer bool) AccountMeta {
	return AccountMeta{Pubkey: key, IsSigner: signer, IsWritable: true}
}

// ReadOnly returns the meta of an account the instruction only reads.
func ReadOnly(key Pubkey, signer bool) AccountMeta {
	return AccountMeta{Pubkey: key, IsSigner: signer}
}

// Instruction is a single call into a program.
type Instruction struct {
	ProgramID Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// ProgramFunc adapts a plain function to the Program interface.
type ProgramFunc func(ctx Context, env Env, accounts []*AccountInfo, data []byte) error

func (fn ProgramFunc) Process(ctx Context, env Env, accounts []*AccountInfo, data []byte) error {
	return fn(ctx, env, accounts, data)
}
