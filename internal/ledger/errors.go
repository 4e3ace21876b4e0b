package ledger

import "fmt"

// LedgerIOError reports a failure reading or appending the ledger file.
type LedgerIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *LedgerIOError) Error() string {
	return fmt.Sprintf("ledger %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LedgerIOError) Unwrap() error {
	return e.Err
}
