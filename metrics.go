package cardsync

import (
	"fmt"
	"hash/fnv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	savesEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardsync_client",
			Name:      "saves_enqueued_total",
			Help:      "Saves accepted into the save queue.",
		},
		[]string{"record"},
	)

	savesFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardsync_client",
			Name:      "saves_failed_total",
			Help:      "Saves whose terminal result was an error.",
		},
		[]string{"record"},
	)
)

// recordLabel hashes a record ID to a stable small-cardinality label (0-31).
func recordLabel(recordID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recordID))
	return fmt.Sprintf("%d", h.Sum32()%32)
}
