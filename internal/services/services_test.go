package services

import (
	"context"
	"net/http"
	"testing"

	"commission-api/internal/apperr"
	"commission-api/internal/database"
	"commission-api/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestCarePackagePurchaseAndConsume(t *testing.T) {
	db := newTestDB(t)
	svc := NewCarePackageService(db)
	ctx := context.Background()

	purchase, err := svc.Purchase(ctx, CarePackagePurchase{
		MemberID:    "m-1",
		PackageName: "Facial x10",
		Price:       decimal.RequireFromString("880"),
		Sessions:    10,
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if purchase.ItemID == "" {
		t.Fatalf("expected a package id")
	}

	var mcp models.MemberCarePackage
	if err := db.First(&mcp).Error; err != nil {
		t.Fatalf("load package: %v", err)
	}

	consumption, err := svc.Consume(ctx, mcp.ID, []CarePackageUsage{
		{ServiceName: "Facial", Sessions: 1},
		{ServiceName: "Facial", Sessions: 2},
	})
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if len(consumption.ItemIDs) != 2 {
		t.Fatalf("expected 2 log ids, got %v", consumption.ItemIDs)
	}
	results, ok := consumption.Results.(ConsumptionResults)
	if !ok || len(results.Completed) != 2 || results.Message != consumption.Message {
		t.Fatalf("unexpected results: %#v", consumption.Results)
	}

	if err := db.First(&mcp, mcp.ID).Error; err != nil {
		t.Fatalf("reload package: %v", err)
	}
	if mcp.RemainingSessions != 7 {
		t.Fatalf("expected 7 sessions left, got %d", mcp.RemainingSessions)
	}
}

func TestCarePackageConsumeRejects(t *testing.T) {
	db := newTestDB(t)
	svc := NewCarePackageService(db)
	ctx := context.Background()

	if _, err := svc.Purchase(ctx, CarePackagePurchase{MemberID: "m-1", PackageName: "Massage x2", Price: decimal.NewFromInt(200), Sessions: 2}); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	_, err := svc.Consume(ctx, 1, []CarePackageUsage{{ServiceName: "Massage", Sessions: 3}})
	if apperr.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected overdraw to be rejected with 400, got %v", err)
	}

	_, err = svc.Consume(ctx, 99, []CarePackageUsage{{ServiceName: "Massage", Sessions: 1}})
	if apperr.HTTPStatus(err) != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown package, got %v", err)
	}

	var logs int64
	db.Model(&models.MemberCarePackageTransactionLog{}).Count(&logs)
	if logs != 0 {
		t.Fatalf("expected no transaction logs, got %d", logs)
	}
}

func TestVoucherPurchaseAndConsume(t *testing.T) {
	db := newTestDB(t)
	svc := NewVoucherService(db)
	ctx := context.Background()

	purchase, err := svc.Purchase(ctx, "m-2", "Gift 100", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if purchase.ItemID != "1" {
		t.Fatalf("expected voucher id 1, got %q", purchase.ItemID)
	}

	consumption, err := svc.Consume(ctx, 1, decimal.RequireFromString("30.50"), "Manicure")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if len(consumption.ItemIDs) != 1 {
		t.Fatalf("expected one log id, got %v", consumption.ItemIDs)
	}

	var entry models.MemberVoucherTransactionLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if consumption.ItemIDs[0] != "1" || entry.MemberVoucherID != 1 {
		t.Fatalf("expected commission ids to point at the log row, got %v / %+v", consumption.ItemIDs, entry)
	}
	if !entry.BalanceAfter.Equal(decimal.RequireFromString("69.5")) {
		t.Fatalf("expected balance 69.5, got %s", entry.BalanceAfter)
	}

	_, err = svc.Consume(ctx, 1, decimal.NewFromInt(70), "Too much")
	if apperr.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected insufficient balance to be rejected, got %v", err)
	}
}

func TestSaleCreateKeepsOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)

	sale, err := svc.Create(context.Background(), "m-3", []SaleLineInput{
		{Type: "service", Name: "Haircut", Quantity: 1, UnitPrice: decimal.NewFromInt(40)},
		{Type: "product", Name: "Shampoo", Quantity: 2, UnitPrice: decimal.RequireFromString("12.50")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(sale.CreatedItemIDs) != 2 {
		t.Fatalf("expected 2 ids, got %v", sale.CreatedItemIDs)
	}

	var items []models.SaleItem
	if err := db.Order("id").Find(&items).Error; err != nil {
		t.Fatalf("load items: %v", err)
	}
	if items[0].Name != "Haircut" || sale.CreatedItemIDs[0] != "1" || sale.CreatedItemIDs[1] != "2" {
		t.Fatalf("expected ids in line order, got %v for %+v", sale.CreatedItemIDs, items)
	}

	payload := sale.Payload.(map[string]any)
	if total := payload["data"].(map[string]any)["total"]; total != "65.00" {
		t.Fatalf("expected total 65.00, got %v", total)
	}
}
