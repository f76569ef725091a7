package supervisor

import (
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/crm-online-boutique/crm-concierge/agent/contract"
)

// vipSpendThreshold is the only notion of VIP we have: a derived cutoff on
// lifetime spend, never a stored flag.
const vipSpendThreshold = 1000.0

type orderPayload struct {
	OrderID      string  `json:"orderId"`
	TrackingID   string  `json:"trackingId"`
	TotalAmount  float64 `json:"totalAmount"`
	Currency     string  `json:"currency"`
	CustomerName string  `json:"customerName"`
}

type customerPayload struct {
	ID              int64   `json:"id"`
	Email           string  `json:"email"`
	Address         string  `json:"address"`
	LifetimeRevenue float64 `json:"lifetimeRevenue"`
	OrdersCount     int     `json:"ordersCount"`
}

// translate turns the worker's structured answer into customer-safe prose.
// Internal identifiers and backend field names must never surface: tracking
// references are dropped and amounts are spelled out in natural language.
func (s *Supervisor) translate(result *contractx.ToolResult, fallbackText string) string {
	if result == nil {
		if strings.TrimSpace(fallbackText) != "" {
			return fallbackText
		}
		return "I'm sorry, I did not get an answer from our back office. Please try again in a moment."
	}

	if result.IsError {
		return "I'm sorry, our records system is not responding right now. Please try again in a few minutes."
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "I'm sorry, I did not get an answer from our back office. Please try again in a moment."
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &keys); err == nil {
		if _, ok := keys["trackingId"]; ok {
			var order orderPayload
			if err := json.Unmarshal([]byte(text), &order); err == nil {
				return describeOrder(order)
			}
		}
		if _, ok := keys["lifetimeRevenue"]; ok {
			var customer customerPayload
			if err := json.Unmarshal([]byte(text), &customer); err == nil {
				return describeCustomer(customer)
			}
		}
	}

	if strings.Contains(text, "not found") {
		return describeNotFound(text)
	}

	return fmt.Sprintf("Here is what our back office reported: %s", text)
}

func describeOrder(order orderPayload) string {
	owner := order.CustomerName
	if owner == "" {
		owner = "one of our customers"
	}
	return fmt.Sprintf(
		"Good news! I found that order. It comes to %.2f %s and is registered to %s. Is there anything else I can help you with?",
		order.TotalAmount, order.Currency, owner,
	)
}

func describeCustomer(customer customerPayload) string {
	orders := fmt.Sprintf("%d orders", customer.OrdersCount)
	if customer.OrdersCount == 1 {
		orders = "1 order"
	}
	reply := fmt.Sprintf("That customer has spent a total of %.2f with us across %s.", customer.LifetimeRevenue, orders)
	if customer.LifetimeRevenue > vipSpendThreshold {
		return reply + " Based on their total spending they qualify for our VIP tier."
	}
	return reply + " They have not yet reached our VIP spending tier."
}

func describeNotFound(text string) string {
	switch {
	case strings.HasPrefix(text, "Order"):
		return "I'm sorry, I could not find an order matching that tracking reference. Could you double-check it for me?"
	case strings.HasPrefix(text, "Customer"):
		return "I'm sorry, I could not find that customer in our records. Could you double-check the spelling of their name?"
	default:
		return "I'm sorry, I could not find what you asked about in our records."
	}
}
