package lookup

import (
	"order-gateway/internal/orders"
	platformstrings "order-gateway/pkg/platform/strings"
)

// unknownStatus stands in when the backend omits a fulfillment status.
const unknownStatus = "UNKNOWN"

// project maps the backend record into the public contract. A nil order maps
// to the not-found result.
func project(order *orders.Order) *Result {
	if order == nil {
		return &Result{Found: false}
	}

	status := order.DisplayFulfillmentStatus
	if status == "" {
		status = unknownStatus
	}

	// Tracking is the order-preserving flatten of every fulfillment's
	// entries; the slice is non-nil so the response always carries an array.
	tracking := make([]TrackingEntry, 0)
	for _, f := range order.Fulfillments {
		for _, ti := range f.TrackingInfo {
			tracking = append(tracking, TrackingEntry{
				Number:  ti.Number,
				URL:     ti.URL,
				Company: ti.Company,
			})
		}
	}

	return &Result{
		Found:         true,
		OrderName:     order.Name,
		DisplayStatus: platformstrings.HumanizeEnum(status),
		StatusPageURL: order.StatusPageURL,
		Tracking:      tracking,
	}
}
