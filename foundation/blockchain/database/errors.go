package database

import "errors"

// Set of error kinds a candidate block can be rejected with. Every rejection
// wraps exactly one of these so callers can use errors.Is.
var (
	// ErrInvalidBlock covers a genesis or linkage mismatch, a failed proof of
	// work, and a timestamp that does not move forward.
	ErrInvalidBlock = errors.New("invalid block")

	// ErrInvalidMerkleRoot is returned when the declared merkle root does not
	// match the root recomputed from the transactions.
	ErrInvalidMerkleRoot = errors.New("invalid merkle root")

	// ErrInvalidTransaction covers a missing or already spent output, a
	// double spend, a bad signature, and outputs worth more than inputs.
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// IsRejection reports whether the error is one of the validation kinds as
// opposed to an infrastructure failure such as a storage write.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidBlock) ||
		errors.Is(err, ErrInvalidMerkleRoot) ||
		errors.Is(err, ErrInvalidTransaction)
}
