package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"commission-api/internal/models"
	"commission-api/pkg/logging"

	"github.com/shopspring/decimal"
)

const breakdownKeyPrefix = "commission_breakdown"

type breakdownSource interface {
	DailyBreakdown(ctx context.Context, employeeID string, from, to time.Time) ([]models.DailyCommission, error)
}

// Breakdown is one employee's commission per day for a month
type Breakdown struct {
	EmployeeID             string                   `json:"employee_id"`
	Month                  string                   `json:"month"` // YYYY-MM
	Days                   []models.DailyCommission `json:"days"`
	TotalPerformanceAmount decimal.Decimal          `json:"total_performance_amount"`
	TotalCommissionAmount  decimal.Decimal          `json:"total_commission_amount"`
}

// BreakdownService builds monthly commission breakdowns, caching them until
// new commissions for the same employee and month are recorded
type BreakdownService struct {
	source breakdownSource
	cache  Cache
	ttl    time.Duration
}

// NewBreakdownService creates a breakdown service. A nil cache disables caching.
func NewBreakdownService(source breakdownSource, cache Cache, ttl time.Duration) *BreakdownService {
	return &BreakdownService{source: source, cache: cache, ttl: ttl}
}

// Cached breakdowns are stored under a generation that Invalidate bumps, so a
// read that raced a write can only populate a generation nobody reads again.
func generationKey(employeeID, month string) string {
	return fmt.Sprintf("%s_gen:%s:%s", breakdownKeyPrefix, employeeID, month)
}

func breakdownKey(employeeID, month string, generation int64) string {
	return fmt.Sprintf("%s:%s:%s:%d", breakdownKeyPrefix, employeeID, month, generation)
}

// generation returns the current generation, or zero before the first write
func (s *BreakdownService) generation(ctx context.Context, employeeID, month string) (int64, error) {
	value, err := s.cache.Get(ctx, generationKey(employeeID, month))
	if errors.Is(err, ErrCacheMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(value, 10, 64)
}

// MonthlyBreakdown returns the breakdown for the UTC calendar month containing month
func (s *BreakdownService) MonthlyBreakdown(ctx context.Context, employeeID string, month time.Time) (*Breakdown, error) {
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthKey := from.Format("2006-01")
	key := ""

	if s.cache != nil {
		gen, err := s.generation(ctx, employeeID, monthKey)
		if err != nil {
			logging.Warnf("Breakdown cache read failed - employee: %s, month: %s, error: %v", employeeID, monthKey, err)
		} else {
			key = breakdownKey(employeeID, monthKey, gen)
		}
	}

	if key != "" {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			var b Breakdown
			if err := json.Unmarshal([]byte(cached), &b); err == nil {
				return &b, nil
			}
			logging.Warnf("Discarding unreadable cached breakdown - key: %s", key)
		} else if !errors.Is(err, ErrCacheMiss) {
			logging.Warnf("Breakdown cache read failed - key: %s, error: %v", key, err)
		}
	}

	days, err := s.source.DailyBreakdown(ctx, employeeID, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to load commission breakdown: %w", err)
	}

	b := &Breakdown{
		EmployeeID:             employeeID,
		Month:                  monthKey,
		Days:                   days,
		TotalPerformanceAmount: decimal.Zero,
		TotalCommissionAmount:  decimal.Zero,
	}
	if b.Days == nil {
		b.Days = []models.DailyCommission{}
	}
	for _, d := range days {
		b.TotalPerformanceAmount = b.TotalPerformanceAmount.Add(d.PerformanceAmount)
		b.TotalCommissionAmount = b.TotalCommissionAmount.Add(d.CommissionAmount)
	}

	if key != "" {
		if data, err := json.Marshal(b); err == nil {
			if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
				logging.Warnf("Breakdown cache write failed - key: %s, error: %v", key, err)
			}
		}
	}

	return b, nil
}

// Invalidate moves every employee/month touched by records to a new
// generation and drops the breakdown cached under the previous one
func (s *BreakdownService) Invalidate(ctx context.Context, records []models.EmployeeCommission) {
	if s.cache == nil || len(records) == 0 {
		return
	}

	type employeeMonth struct{ employeeID, month string }
	seen := make(map[employeeMonth]struct{})
	for _, rec := range records {
		created := rec.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		em := employeeMonth{rec.EmployeeID, created.UTC().Format("2006-01")}
		if _, ok := seen[em]; ok {
			continue
		}
		seen[em] = struct{}{}

		gen, err := s.cache.Incr(ctx, generationKey(em.employeeID, em.month))
		if err != nil {
			logging.Warnf("Breakdown cache invalidation failed - employee: %s, month: %s, error: %v", em.employeeID, em.month, err)
			continue
		}
		if err := s.cache.Delete(ctx, breakdownKey(em.employeeID, em.month, gen-1)); err != nil {
			logging.Warnf("Stale breakdown cleanup failed - employee: %s, month: %s, error: %v", em.employeeID, em.month, err)
		}
	}
}
