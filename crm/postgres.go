package crm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
}

type customerRow struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	ID      int64  `bun:"id,pk,autoincrement"`
	Name    string `bun:"name,notnull"`
	Surname string `bun:"surname,notnull"`
	Email   string `bun:"email"`
	Address string `bun:"address"`

	Orders []*orderRow `bun:"rel:has-many,join:id=customer_id"`
}

type orderRow struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID           int64   `bun:"id,pk,autoincrement"`
	OrderID      string  `bun:"order_id,notnull,unique"`
	TrackingID   string  `bun:"tracking_id"`
	ShippingCost float64 `bun:"shipping_cost"`
	TotalAmount  float64 `bun:"total_amount"`
	Currency     string  `bun:"currency"`
	CustomerID   int64   `bun:"customer_id"`

	Customer *customerRow `bun:"rel:belongs-to,join:customer_id=id"`
}

// PostgresStore answers the gateway queries from the CRM database.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) LookupCustomer(ctx context.Context, name, surname string) (CustomerProfile, error) {
	var row customerRow
	err := s.db.NewSelect().
		Model(&row).
		Relation("Orders").
		Where("c.name = ?", name).
		Where("c.surname = ?", surname).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CustomerProfile{}, ErrCustomerNotFound
		}
		return CustomerProfile{}, fmt.Errorf("lookup customer: %w", err)
	}

	profile := CustomerProfile{
		ID:      row.ID,
		Email:   row.Email,
		Address: row.Address,
	}
	for _, o := range row.Orders {
		profile.LifetimeRevenue += o.TotalAmount
		profile.OrdersCount++
	}
	return profile, nil
}

func (s *PostgresStore) FindOrder(ctx context.Context, trackingID string) (OrderSummary, error) {
	var row orderRow
	err := s.db.NewSelect().
		Model(&row).
		Relation("Customer").
		Where("o.tracking_id = ?", trackingID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OrderSummary{}, ErrOrderNotFound
		}
		return OrderSummary{}, fmt.Errorf("find order: %w", err)
	}

	summary := OrderSummary{
		OrderID:     row.OrderID,
		TrackingID:  row.TrackingID,
		TotalAmount: row.TotalAmount,
		Currency:    row.Currency,
	}
	if row.Customer != nil {
		summary.CustomerName = row.Customer.Name + " " + row.Customer.Surname
	}
	return summary, nil
}
