package cardsync

import (
	"context"

	"github.com/studykit/cardsync/internal/savequeue"
)

// executor abstracts the internal save queue so tests can substitute a
// stub.
type executor interface {
	Submit(context.Context, string, savequeue.Job) error
	Barrier(ctx context.Context, recordID string) error
	Stop()
}
