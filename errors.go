package cardsync

import (
	"errors"

	"github.com/studykit/cardsync/internal/savequeue"
	"github.com/studykit/cardsync/internal/types"
)

// ErrBackPressure is returned when the client's save queue is full.
var ErrBackPressure = savequeue.ErrQueueFull

// ErrClosed is returned when a save is submitted after Close.
var ErrClosed = savequeue.ErrQueueClosed

// ErrNotFound is returned when the backing record does not exist.
var ErrNotFound = types.ErrNotFound

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool { return errors.Is(err, ErrBackPressure) }
