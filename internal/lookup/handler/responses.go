package handler

import "order-gateway/internal/lookup"

// notFoundResponse is the fixed shape for a miss. Nothing else leaks.
type notFoundResponse struct {
	Found bool `json:"found"`
}

type trackingEntry struct {
	Number  string `json:"number"`
	URL     string `json:"url"`
	Company string `json:"company"`
}

// foundResponse carries the public order summary. StatusPageURL serializes
// as null when the backend has none.
type foundResponse struct {
	Found         bool            `json:"found"`
	OrderName     string          `json:"orderName"`
	DisplayStatus string          `json:"displayStatus"`
	StatusPageURL *string         `json:"statusPageUrl"`
	Tracking      []trackingEntry `json:"tracking"`
}

func fromResult(result *lookup.Result) any {
	if !result.Found {
		return notFoundResponse{Found: false}
	}

	tracking := make([]trackingEntry, 0, len(result.Tracking))
	for _, t := range result.Tracking {
		tracking = append(tracking, trackingEntry{
			Number:  t.Number,
			URL:     t.URL,
			Company: t.Company,
		})
	}

	return foundResponse{
		Found:         true,
		OrderName:     result.OrderName,
		DisplayStatus: result.DisplayStatus,
		StatusPageURL: result.StatusPageURL,
		Tracking:      tracking,
	}
}
