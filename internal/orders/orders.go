// Package orders talks to the order-management Admin API. The gateway only
// depends on a narrow slice of it: find at most one order by a filter query
// and read its fulfillment state.
package orders

import "context"

// TrackingInfo is one shipment tracking entry on a fulfillment.
type TrackingInfo struct {
	Number  string
	URL     string
	Company string
}

// Fulfillment groups shipped items; each carries zero or more tracking
// entries.
type Fulfillment struct {
	TrackingInfo []TrackingInfo
}

// Order is the backend record the gateway projects from.
type Order struct {
	Name                     string
	DisplayFulfillmentStatus string
	StatusPageURL            *string
	Fulfillments             []Fulfillment
}

// Client finds orders by filter expression.
type Client interface {
	// FindOrder returns the first order matching the query, or nil when no
	// order matches. A nil order is not an error.
	FindOrder(ctx context.Context, query string) (*Order, error)
}
