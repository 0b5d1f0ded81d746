package syncer

import (
	"github.com/comandaclub/comanda/internal/pos"
	"github.com/google/uuid"
)

// MergeOrder folds an inbound remote snapshot into the locally held
// copy. Remote fields win where the snapshot carries them; the
// local-only derived state (saved quantities when absent remotely, the
// IsSaved/IsReviewed flags, the revision counter) survives the merge.
// Callers recompute ongoing/completed list membership from the merged
// status; membership is derived, never tracked independently.
func MergeOrder(local *pos.Order, remote *pos.OrderSnapshot) *pos.Order {
	if remote == nil {
		return local.Clone()
	}
	if local == nil {
		local = &pos.Order{ID: remote.ID}
	}
	merged := local.Clone()

	if remote.ID != uuid.Nil {
		merged.ID = remote.ID
	}
	if remote.RestaurantID != uuid.Nil {
		merged.RestaurantID = remote.RestaurantID
	}
	if remote.TableID != uuid.Nil {
		merged.TableID = remote.TableID
	}
	if remote.Status != "" {
		// Completion is terminal; a stale ongoing snapshot never
		// resurrects a locally completed order.
		if !(merged.Status == pos.StatusCompleted && remote.Status == pos.StatusOngoing) {
			merged.Status = remote.Status
		}
	}
	if remote.Items != nil {
		merged.Items = make([]pos.OrderItem, len(remote.Items))
		copy(merged.Items, remote.Items)
	}
	if remote.CustomerName != "" {
		merged.CustomerName = remote.CustomerName
	}
	if !remote.CreatedAt.IsZero() {
		merged.CreatedAt = remote.CreatedAt
	}
	if !remote.UpdatedAt.IsZero() {
		merged.UpdatedAt = remote.UpdatedAt
	}
	if !remote.CompletedAt.IsZero() {
		merged.CompletedAt = remote.CompletedAt
	}
	if remote.SavedQuantities != nil {
		merged.SavedQuantities = make(map[string]int, len(remote.SavedQuantities))
		for k, v := range remote.SavedQuantities {
			merged.SavedQuantities[k] = v
		}
	}
	return merged
}
