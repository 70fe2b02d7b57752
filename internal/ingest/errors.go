package ingest

import (
	"errors"
	"fmt"
)

// ErrNoValidInputs means no candidate survived validation. The registry and
// the ledger are untouched on this path.
var ErrNoValidInputs = errors.New("no supplier statements in good standing")

// SubmissionFailure means the submission call itself failed. The remote
// registry's state is unknown: a blind retry could create a duplicate
// aggregate statement, so callers must not retry automatically.
type SubmissionFailure struct {
	Err error
}

func (e *SubmissionFailure) Error() string {
	return fmt.Sprintf("trader statement submission failed, remote registry state unknown: %v", e.Err)
}

func (e *SubmissionFailure) Unwrap() error { return e.Err }

// PersistenceFailure means the trader statement exists remotely but the
// ledger write failed. The remote submission is orphaned until an operator
// intervenes, which is why this error carries the internal reference number.
type PersistenceFailure struct {
	InternalReferenceNumber string
	Err                     error
}

func (e *PersistenceFailure) Error() string {
	return fmt.Sprintf("ingestion %s: trader statement submitted but not recorded in ledger: %v",
		e.InternalReferenceNumber, e.Err)
}

func (e *PersistenceFailure) Unwrap() error { return e.Err }
