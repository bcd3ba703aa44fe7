package savequeue

import (
	"errors"
	"fmt"
)

// ErrQueueFull reports transient back-pressure: the record's lane was
// full when Submit tried to enqueue a save.
var ErrQueueFull = errors.New("save queue full")

// ErrQueueClosed reports a permanent condition: the queue has been
// stopped and will accept no further saves.
var ErrQueueClosed = errors.New("save queue closed")

// QueueFullError carries diagnostics while satisfying errors.Is(_, ErrQueueFull).
type QueueFullError struct {
	Lane     int // 0 <= Lane < cfg.Lanes
	Length   int // queue length at timeout
	Capacity int // cap(queue)
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("save queue lane %d full (len=%d cap=%d)", e.Lane, e.Length, e.Capacity)
}

func (e *QueueFullError) Is(target error) bool { return target == ErrQueueFull }
