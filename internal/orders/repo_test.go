package orders

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/orgshop-backend/pkg/db/models"
	"github.com/angelmondragon/orgshop-backend/pkg/enums"
	"github.com/angelmondragon/orgshop-backend/pkg/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	ddl := `CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		stripe_session_id TEXT NOT NULL,
		customer_email TEXT NOT NULL,
		customer_name TEXT,
		total_cents INTEGER NOT NULL,
		shipping_address TEXT,
		items TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'created',
		fulfillment_order_id INTEGER,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (stripe_session_id)
	)`
	if err := conn.Exec(ddl).Error; err != nil {
		t.Fatalf("create orders: %v", err)
	}
	return conn
}

func testOrder(sessionID string) *models.Order {
	return &models.Order{
		StripeSessionID: sessionID,
		CustomerEmail:   "buyer@example.org",
		TotalCents:      5500,
		ShippingAddress: &types.Address{Line1: "1 Campus Dr", City: "Tulsa", State: "OK", PostalCode: "74104", Country: "US"},
		Items: []types.OrderItem{
			{ProductID: "p1", VariantID: "v1", Name: "Hoodie", UnitPriceCents: 2000, Quantity: 2},
			{ProductID: "p2", Name: "Stickers", UnitPriceCents: 1500, Quantity: 1},
		},
	}
}

func TestRepositoryCreateAppliesStatusDefault(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	created, err := repo.Create(ctx, testOrder("cs_1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, err := repo.FindBySessionID(ctx, "cs_1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if loaded.ID != created.ID {
		t.Fatalf("expected id %s, got %s", created.ID, loaded.ID)
	}
	if loaded.Status != enums.OrderStatusCreated {
		t.Fatalf("expected storage default status %q, got %q", enums.OrderStatusCreated, loaded.Status)
	}
	if loaded.FulfillmentOrder != nil {
		t.Fatal("expected no fulfillment order id on insert")
	}
	if len(loaded.Items) != 2 || loaded.Items[0].ProductID != "p1" {
		t.Fatalf("expected item snapshot round-trip, got %+v", loaded.Items)
	}
	if loaded.ShippingAddress == nil || loaded.ShippingAddress.City != "Tulsa" {
		t.Fatalf("expected shipping address round-trip, got %+v", loaded.ShippingAddress)
	}
}

func TestRepositoryCreateDuplicateSessionFails(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	if _, err := repo.Create(ctx, testOrder("cs_dup")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := repo.Create(ctx, testOrder("cs_dup")); err == nil {
		t.Fatal("expected unique violation for replayed session")
	}
}

func TestRepositorySetProcessing(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	created, err := repo.Create(ctx, testOrder("cs_proc"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.SetProcessing(ctx, created.ID, 987654); err != nil {
		t.Fatalf("set processing: %v", err)
	}

	loaded, err := repo.FindBySessionID(ctx, "cs_proc")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if loaded.Status != enums.OrderStatusProcessing {
		t.Fatalf("expected processing, got %q", loaded.Status)
	}
	if loaded.FulfillmentOrder == nil || *loaded.FulfillmentOrder != 987654 {
		t.Fatalf("expected fulfillment order id 987654, got %v", loaded.FulfillmentOrder)
	}
}
