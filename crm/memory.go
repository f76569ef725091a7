package crm

import (
	"context"
	"sync"
)

// MemoryStore is the in-process fallback used when no database is configured,
// mirroring the demo dataset the CRM backend seeds on first boot.
type MemoryStore struct {
	mu        sync.RWMutex
	customers []Customer
	orders    []Order
	nextID    int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// NewSeededStore returns a MemoryStore preloaded with the demo customers and
// orders used by local runs and the test suite.
func NewSeededStore() *MemoryStore {
	s := NewMemoryStore()
	john := s.AddCustomer(Customer{Name: "John", Surname: "Doe", Email: "john.doe@example.com", Address: "1 Market St"})
	jane := s.AddCustomer(Customer{Name: "Jane", Surname: "Smith", Email: "jane.smith@example.com", Address: "42 Harbor Ave"})
	s.AddCustomer(Customer{Name: "Alice", Surname: "Johnson", Email: "alice.johnson@example.com", Address: "7 Hilltop Rd"})

	s.AddOrder(Order{OrderID: "ORD-1001", TrackingID: "TRACK123", ShippingCost: 4.99, TotalAmount: 25.50, Currency: "USD", CustomerID: jane})
	s.AddOrder(Order{OrderID: "ORD-1002", TrackingID: "TRACK900", ShippingCost: 9.99, TotalAmount: 1250.00, Currency: "USD", CustomerID: john})
	s.AddOrder(Order{OrderID: "ORD-1003", TrackingID: "TRACK901", ShippingCost: 2.50, TotalAmount: 80.25, Currency: "USD", CustomerID: john})
	return s
}

// AddCustomer stores a customer and returns its assigned id.
func (s *MemoryStore) AddCustomer(c Customer) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID
	s.nextID++
	s.customers = append(s.customers, c)
	return c.ID
}

// AddOrder stores an order and returns its assigned id.
func (s *MemoryStore) AddOrder(o Order) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.nextID
	s.nextID++
	s.orders = append(s.orders, o)
	return o.ID
}

func (s *MemoryStore) LookupCustomer(ctx context.Context, name, surname string) (CustomerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.customers {
		if c.Name != name || c.Surname != surname {
			continue
		}
		profile := CustomerProfile{
			ID:      c.ID,
			Email:   c.Email,
			Address: c.Address,
		}
		for _, o := range s.orders {
			if o.CustomerID == c.ID {
				profile.LifetimeRevenue += o.TotalAmount
				profile.OrdersCount++
			}
		}
		return profile, nil
	}
	return CustomerProfile{}, ErrCustomerNotFound
}

func (s *MemoryStore) FindOrder(ctx context.Context, trackingID string) (OrderSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.TrackingID != trackingID {
			continue
		}
		summary := OrderSummary{
			OrderID:     o.OrderID,
			TrackingID:  o.TrackingID,
			TotalAmount: o.TotalAmount,
			Currency:    o.Currency,
		}
		for _, c := range s.customers {
			if c.ID == o.CustomerID {
				summary.CustomerName = c.Name + " " + c.Surname
				break
			}
		}
		return summary, nil
	}
	return OrderSummary{}, ErrOrderNotFound
}
