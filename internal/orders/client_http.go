package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"order-gateway/internal/platform/config"
)

// orderQuery asks for at most one match; the gateway never pages through
// results.
const orderQuery = `query lookupOrder($query: String!) {
  orders(first: 1, query: $query) {
    edges {
      node {
        name
        displayFulfillmentStatus
        statusPageUrl
        fulfillments {
          trackingInfo {
            number
            url
            company
          }
        }
      }
    }
  }
}`

// HTTPClient implements Client against the Admin GraphQL API.
type HTTPClient struct {
	endpoint    string
	accessToken string
	client      *http.Client
}

func NewHTTPClient(cfg config.BackendConfig) *HTTPClient {
	return &HTTPClient{
		endpoint:    fmt.Sprintf("https://%s/admin/api/%s/graphql.json", cfg.ShopDomain, cfg.APIVersion),
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

// WithEndpoint overrides the computed endpoint, used by tests.
func (c *HTTPClient) WithEndpoint(endpoint string) *HTTPClient {
	c.endpoint = endpoint
	return c
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		Orders struct {
			Edges []struct {
				Node orderNode `json:"node"`
			} `json:"edges"`
		} `json:"orders"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type orderNode struct {
	Name                     string  `json:"name"`
	DisplayFulfillmentStatus string  `json:"displayFulfillmentStatus"`
	StatusPageURL            *string `json:"statusPageUrl"`
	Fulfillments             []struct {
		TrackingInfo []struct {
			Number  string `json:"number"`
			URL     string `json:"url"`
			Company string `json:"company"`
		} `json:"trackingInfo"`
	} `json:"fulfillments"`
}

func (c *HTTPClient) FindOrder(ctx context.Context, query string) (*Order, error) {
	body, err := json.Marshal(graphqlRequest{
		Query:     orderQuery,
		Variables: map[string]any{"query": query},
	})
	if err != nil {
		return nil, fmt.Errorf("encode order query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order backend returned status %d", resp.StatusCode)
	}

	var gqlResp graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("order backend error: %s", gqlResp.Errors[0].Message)
	}

	edges := gqlResp.Data.Orders.Edges
	if len(edges) == 0 {
		return nil, nil
	}

	return edges[0].Node.toOrder(), nil
}

func (n orderNode) toOrder() *Order {
	order := &Order{
		Name:                     n.Name,
		DisplayFulfillmentStatus: n.DisplayFulfillmentStatus,
		StatusPageURL:            n.StatusPageURL,
	}
	for _, f := range n.Fulfillments {
		fulfillment := Fulfillment{}
		for _, ti := range f.TrackingInfo {
			fulfillment.TrackingInfo = append(fulfillment.TrackingInfo, TrackingInfo{
				Number:  ti.Number,
				URL:     ti.URL,
				Company: ti.Company,
			})
		}
		order.Fulfillments = append(order.Fulfillments, fulfillment)
	}
	return order
}
