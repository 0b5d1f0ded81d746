package syncer

import (
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const (
	// KindTransientWrite marks a failed remote write; the resource stays
	// dirty and the next edit or cycle retries.
	KindTransientWrite = "transient-write"
	// KindSnapshotStale marks a failed baseline fetch; the delta cycle is
	// skipped because under-counting beats double-counting.
	KindSnapshotStale = "snapshot-stale"
	// KindDuplicateSuppressed is not a failure; a call shared an in-flight
	// operation's outcome.
	KindDuplicateSuppressed = "duplicate-suppressed"
	// KindTaskFailure marks one failed item inside a background batch.
	KindTaskFailure = "task-failure"
	// KindInvariantViolation marks a state the pipeline refuses to
	// persist, such as an order with zero items.
	KindInvariantViolation = "invariant-violation"
)

// OpError ties a pipeline failure to the operation, tenant and resource
// it occurred on.
type OpError struct {
	Op           string
	RestaurantID uuid.UUID
	ResourceID   uuid.UUID
	Kind         string
	Err          error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Op, e.ResourceID, e.Kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.ResourceID, e.Kind, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Reporter is the single boundary through which pipeline failures are
// recorded. Nothing inside the debouncer, deduplicator or queue panics
// into the dispatch path.
type Reporter struct {
	logger aqm.Logger
}

func NewReporter(logger aqm.Logger) *Reporter {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Reporter{logger: logger}
}

func (r *Reporter) Report(e *OpError) {
	if e == nil {
		return
	}
	if e.Kind == KindDuplicateSuppressed {
		r.logger.Debug("operation coalesced",
			"op", e.Op,
			"restaurant_id", e.RestaurantID.String(),
			"resource_id", e.ResourceID.String(),
		)
		return
	}
	r.logger.Error("sync pipeline failure",
		"op", e.Op,
		"kind", e.Kind,
		"restaurant_id", e.RestaurantID.String(),
		"resource_id", e.ResourceID.String(),
		"error", e.Err,
	)
}
