package swapvault

import "github.com/iov-one/swapvault/errors"

// AccountStorageOverhead is the number of bytes every account is charged
// for on top of its data.
const AccountStorageOverhead = 128

// Rent holds the parameters that decide how many lamports an account must
// hold to persist.
type Rent struct {
	LamportsPerByteYear uint64  `json:"lamports_per_byte_year"`
	ExemptionThreshold  float64 `json:"exemption_threshold"`
}

// DefaultRent returns the parameters used when genesis does not set any.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2.0,
	}
}

// MinimumBalance returns the lowest balance an account with dataLen bytes of
// data may hold.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	bytes := uint64(AccountStorageOverhead + dataLen)
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

// IsExempt returns true if lamports are enough to keep dataLen bytes.
func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(dataLen)
}

func (r Rent) Validate() error {
	if r.LamportsPerByteYear == 0 {
		return errors.Wrap(errors.ErrInput, "lamports per byte year is required")
	}
	if r.ExemptionThreshold <= 0 {
		return errors.Wrap(errors.ErrInput, "exemption threshold must be positive")
	}
	return nil
}
