// Package crm exposes the customer/order backing store consumed by the tool
// gateway. The gateway only ever asks two read-only questions of it.
package crm

import (
	"context"
	"errors"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrOrderNotFound    = errors.New("order not found")
)

type Customer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

type Order struct {
	ID           int64   `json:"id"`
	OrderID      string  `json:"orderId"`
	TrackingID   string  `json:"trackingId"`
	ShippingCost float64 `json:"shippingCost"`
	TotalAmount  float64 `json:"totalAmount"`
	Currency     string  `json:"currency"`
	CustomerID   int64   `json:"customerId"`
}

// CustomerProfile is the aggregated answer to a customer lookup: identity and
// contact fields plus lifetime revenue derived from the customer's orders.
type CustomerProfile struct {
	ID              int64   `json:"id"`
	Email           string  `json:"email"`
	Address         string  `json:"address"`
	LifetimeRevenue float64 `json:"lifetimeRevenue"`
	OrdersCount     int     `json:"ordersCount"`
}

// OrderSummary is the answer to an order lookup by tracking id.
type OrderSummary struct {
	OrderID      string  `json:"orderId"`
	TrackingID   string  `json:"trackingId"`
	TotalAmount  float64 `json:"totalAmount"`
	Currency     string  `json:"currency"`
	CustomerName string  `json:"customerName"`
}

// Store answers the two read-only queries the gateway needs. Name matching is
// case-sensitive. Implementations return the sentinel not-found errors above
// for missing records; any other error is an unexpected store failure.
type Store interface {
	LookupCustomer(ctx context.Context, name, surname string) (CustomerProfile, error)
	FindOrder(ctx context.Context, trackingID string) (OrderSummary, error)
}
