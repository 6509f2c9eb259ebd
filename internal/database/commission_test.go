package database

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"commission-api/internal/commission"
	"commission-api/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := OpenSQLite(":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// failNthCommissionInsert makes the n-th insert into employee_commissions fail.
func failNthCommissionInsert(t *testing.T, db *gorm.DB, n int) {
	t.Helper()

	count := 0
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_nth", func(tx *gorm.DB) {
		if tx.Statement.Table != "employee_commissions" {
			return
		}
		count++
		if count == n {
			tx.AddError(errors.New("simulated insert failure"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

func countCommissions(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	if err := db.Model(&models.EmployeeCommission{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func twoEmployees() commission.AssignmentRequest {
	return commission.AssignmentRequest{AssignedEmployee: json.RawMessage(`[
		{"employeeId":7,"performanceRate":10,"performanceAmount":100,"commissionRate":5,"commissionAmount":5,"itemType":"x"},
		{"employeeId":8,"performanceRate":10,"performanceAmount":100,"commissionRate":5,"commissionAmount":5,"itemType":"x"}
	]`)}
}

func TestCreateEmployeeCommission(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommissionRepository(db)

	record := &models.EmployeeCommission{
		EmployeeID:        "7",
		PerformanceRate:   decimal.RequireFromString("10"),
		PerformanceAmount: decimal.RequireFromString("100.50"),
		CommissionRate:    decimal.RequireFromString("5"),
		CommissionAmount:  decimal.RequireFromString("5.03"),
		ItemType:          models.ItemTypeServices,
		ItemID:            "10",
	}
	if err := repo.CreateEmployeeCommission(context.Background(), record); err != nil {
		t.Fatalf("create: %v", err)
	}
	if record.ID == 0 {
		t.Fatalf("expected an id to be assigned")
	}
	if record.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}

	got, err := repo.ListEmployeeCommissions(context.Background(), models.CommissionFilter{EmployeeID: "7"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].UUID != record.UUID || !got[0].PerformanceAmount.Equal(record.PerformanceAmount) {
		t.Fatalf("unexpected stored record: %+v", got[0])
	}
}

func TestAtomicFanoutRollsBack(t *testing.T) {
	db := newTestDB(t)
	failNthCommissionInsert(t, db, 2)
	p := commission.NewProcessor(NewCommissionRepository(db), commission.WithAtomicFanout(true))

	_, err := p.ApplyMCP(context.Background(), commission.Purchase{ItemID: "42"}, twoEmployees())
	if err == nil {
		t.Fatalf("expected the second insert to fail")
	}
	if n := countCommissions(t, db); n != 0 {
		t.Fatalf("expected no records after rollback, got %d", n)
	}
}

func TestNonAtomicFanoutKeepsEarlierRows(t *testing.T) {
	db := newTestDB(t)
	failNthCommissionInsert(t, db, 2)
	p := commission.NewProcessor(NewCommissionRepository(db), commission.WithAtomicFanout(false))

	_, err := p.ApplyMCP(context.Background(), commission.Purchase{ItemID: "42"}, twoEmployees())
	if err == nil {
		t.Fatalf("expected the second insert to fail")
	}
	if n := countCommissions(t, db); n != 1 {
		t.Fatalf("expected the first record to survive, got %d", n)
	}
}

func TestListEmployeeCommissionsFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommissionRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	rows := []models.EmployeeCommission{
		{EmployeeID: "7", ItemType: models.ItemTypeServices, ItemID: "1", CreatedAt: base},
		{EmployeeID: "7", ItemType: models.ItemTypeProducts, ItemID: "2", CreatedAt: base.Add(24 * time.Hour)},
		{EmployeeID: "8", ItemType: models.ItemTypeServices, ItemID: "3", CreatedAt: base.Add(48 * time.Hour)},
	}
	for i := range rows {
		if err := repo.CreateEmployeeCommission(ctx, &rows[i]); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	tests := []struct {
		name   string
		filter models.CommissionFilter
		want   []string
	}{
		{name: "all", filter: models.CommissionFilter{}, want: []string{"3", "2", "1"}},
		{name: "employee", filter: models.CommissionFilter{EmployeeID: "7"}, want: []string{"2", "1"}},
		{name: "item_type", filter: models.CommissionFilter{ItemType: models.ItemTypeServices}, want: []string{"3", "1"}},
		{name: "range", filter: models.CommissionFilter{From: base.Add(time.Hour), To: base.Add(47 * time.Hour)}, want: []string{"2"}},
		{name: "limit", filter: models.CommissionFilter{Limit: 1}, want: []string{"3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListEmployeeCommissions(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d records, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i].ItemID != id {
					t.Fatalf("position %d: expected item %s, got %s", i, id, got[i].ItemID)
				}
			}
		})
	}
}

func TestDailyBreakdown(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommissionRepository(db)
	ctx := context.Background()

	day1 := time.Date(2026, 10, 3, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 10, 5, 15, 0, 0, 0, time.UTC)
	rows := []models.EmployeeCommission{
		{EmployeeID: "7", PerformanceAmount: decimal.RequireFromString("100"), CommissionAmount: decimal.RequireFromString("5.50"), ItemType: models.ItemTypeServices, ItemID: "1", CreatedAt: day1},
		{EmployeeID: "7", PerformanceAmount: decimal.RequireFromString("40"), CommissionAmount: decimal.RequireFromString("2"), ItemType: models.ItemTypeProducts, ItemID: "2", CreatedAt: day1.Add(3 * time.Hour)},
		{EmployeeID: "7", PerformanceAmount: decimal.RequireFromString("60"), CommissionAmount: decimal.RequireFromString("3"), ItemType: models.ItemTypeServices, ItemID: "3", CreatedAt: day2},
		{EmployeeID: "8", PerformanceAmount: decimal.RequireFromString("999"), CommissionAmount: decimal.RequireFromString("99"), ItemType: models.ItemTypeServices, ItemID: "4", CreatedAt: day2},
		{EmployeeID: "7", PerformanceAmount: decimal.RequireFromString("1"), CommissionAmount: decimal.RequireFromString("1"), ItemType: models.ItemTypeServices, ItemID: "5", CreatedAt: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)},
	}
	for i := range rows {
		if err := repo.CreateEmployeeCommission(ctx, &rows[i]); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	days, err := repo.DailyBreakdown(ctx, "7", from, from.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %+v", days)
	}
	if days[0].Day != "2026-10-03" || days[0].Records != 2 || !days[0].CommissionAmount.Equal(decimal.RequireFromString("7.5")) {
		t.Fatalf("unexpected first day: %+v", days[0])
	}
	if days[1].Day != "2026-10-05" || !days[1].PerformanceAmount.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("unexpected second day: %+v", days[1])
	}
}
