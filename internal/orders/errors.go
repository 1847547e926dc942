package orders

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrTxConflict: penanda kontensi transien dari store (deadlock /
	// serialization failure). Service me-retry dengan budget terbatas.
	ErrTxConflict = errors.New("transaction conflict")

	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError: bentuk request tidak valid, ditolak sebelum
// transaksi apapun dibuka. Fields = map field -> pesan.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

// ConflictError: retry budget habis tanpa pembacaan stok yang definitif.
type ConflictError struct {
	Attempts int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("placement conflicted after %d attempts", e.Attempts)
}
