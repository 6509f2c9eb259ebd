package commission

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"commission-api/internal/apperr"
	"commission-api/internal/models"
)

// EmployeeID accepts either a JSON string or a JSON number.
type EmployeeID string

func (id *EmployeeID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = EmployeeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("employeeId must be a string or number: %w", err)
	}
	*id = EmployeeID(n.String())
	return nil
}

// Assignment is one employee's share of an item. Amounts are supplied by the
// caller and stored as given; a field counts as present when it was sent, so
// zero is a legal value.
type Assignment struct {
	EmployeeID        *EmployeeID      `json:"employeeId" validate:"required"`
	PerformanceRate   *decimal.Decimal `json:"performanceRate" validate:"required"`
	PerformanceAmount *decimal.Decimal `json:"performanceAmount" validate:"required"`
	CommissionRate    *decimal.Decimal `json:"commissionRate" validate:"required"`
	CommissionAmount  *decimal.Decimal `json:"commissionAmount" validate:"required"`
	Remarks           string           `json:"remarks,omitempty"`
	ItemType          *string          `json:"itemType" validate:"required"`
}

// AssignmentRequest carries assignedEmployee either at the top level or nested
// under item. The top level wins when both are sent.
type AssignmentRequest struct {
	AssignedEmployee json.RawMessage `json:"assignedEmployee,omitempty"`
	Item             *struct {
		AssignedEmployee json.RawMessage `json:"assignedEmployee,omitempty"`
	} `json:"item,omitempty"`
}

func (r AssignmentRequest) raw() json.RawMessage {
	if !isAbsent(r.AssignedEmployee) {
		return r.AssignedEmployee
	}
	if r.Item != nil {
		return r.Item.AssignedEmployee
	}
	return nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

var errNotAList = errors.New("assignedEmployee must be a list")

// parseAssignments decodes an assignedEmployee value. Absent or null yields a
// nil slice; anything other than a JSON array is rejected.
func parseAssignments(raw json.RawMessage) ([]Assignment, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	if bytes.TrimSpace(raw)[0] != '[' {
		return nil, errNotAList
	}

	var assignments []Assignment
	if err := json.Unmarshal(raw, &assignments); err != nil {
		return nil, fmt.Errorf("invalid assignedEmployee entry: %w", err)
	}
	return assignments, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check reports the missing fields of a, naming where it sat in the request.
func check(v *validator.Validate, a Assignment, position string) error {
	err := v.Struct(a)
	if err == nil {
		return checkRange(a, position)
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Validation("invalid commission assignment at %s: %v", position, err)
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return apperr.Validation("missing required commission fields at %s: %s", position, strings.Join(missing, ", "))
}

func (a Assignment) record(itemID string, itemType models.ItemType) models.EmployeeCommission {
	return models.EmployeeCommission{
		EmployeeID:        string(*a.EmployeeID),
		PerformanceRate:   *a.PerformanceRate,
		PerformanceAmount: *a.PerformanceAmount,
		CommissionRate:    *a.CommissionRate,
		CommissionAmount:  *a.CommissionAmount,
		Remarks:           a.Remarks,
		ItemType:          itemType,
		ItemID:            itemID,
	}
}

// Rates and amounts must fit their ledger columns exactly: rates are
// decimal(12,6), amounts decimal(18,4).
var (
	rateLimit   = decimal.New(1, 6)
	amountLimit = decimal.New(1, 14)
)

func fits(d decimal.Decimal, limit decimal.Decimal, places int32) bool {
	return d.Abs().LessThan(limit) && d.Equal(d.Truncate(places))
}

func checkRange(a Assignment, position string) error {
	fields := []struct {
		name   string
		value  decimal.Decimal
		limit  decimal.Decimal
		places int32
	}{
		{"performanceRate", *a.PerformanceRate, rateLimit, 6},
		{"performanceAmount", *a.PerformanceAmount, amountLimit, 4},
		{"commissionRate", *a.CommissionRate, rateLimit, 6},
		{"commissionAmount", *a.CommissionAmount, amountLimit, 4},
	}

	var bad []string
	for _, f := range fields {
		if !fits(f.value, f.limit, f.places) {
			bad = append(bad, fmt.Sprintf("%s (below %s with at most %d decimal places)", f.name, f.limit, f.places))
		}
	}
	if len(bad) > 0 {
		return apperr.Validation("commission fields out of range at %s: %s", position, strings.Join(bad, ", "))
	}
	return nil
}
