package api

import (
	"net/http"
	"strconv"
	"time"

	"commission-api/internal/models"
	"commission-api/internal/response"

	"github.com/gin-gonic/gin"
)

// parseTime accepts RFC 3339 timestamps or plain YYYY-MM-DD dates (UTC midnight)
func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// ListCommissions lists commission records, newest first
func (h *Handler) ListCommissions(c *gin.Context) {
	filter := models.CommissionFilter{
		EmployeeID: c.Query("employee_id"),
		ItemType:   models.ItemType(c.Query("item_type")),
	}

	if filter.ItemType != "" && !filter.ItemType.Valid() {
		response.ErrorJSON(c, http.StatusBadRequest, "Unknown item_type: "+string(filter.ItemType))
		return
	}
	for _, param := range []struct {
		name string
		dst  *time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		value := c.Query(param.name)
		if value == "" {
			continue
		}
		t, err := parseTime(value)
		if err != nil {
			response.ErrorJSON(c, http.StatusBadRequest, "Invalid "+param.name+": expected RFC 3339 or YYYY-MM-DD")
			return
		}
		*param.dst = t
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			response.ErrorJSON(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = n
	}

	records, err := h.commissions.ListEmployeeCommissions(c.Request.Context(), filter)
	if err != nil {
		fail(c, "List commissions", err)
		return
	}

	response.SuccessJSON(c, http.StatusOK, "", records)
}

// GetCommissionBreakdown returns one employee's per-day totals for a month
func (h *Handler) GetCommissionBreakdown(c *gin.Context) {
	employeeID := c.Query("employee_id")
	if employeeID == "" {
		response.ErrorJSON(c, http.StatusBadRequest, "employee_id is required")
		return
	}

	month, err := time.Parse("2006-01", c.Query("month"))
	if err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid month: expected YYYY-MM")
		return
	}

	breakdown, err := h.breakdowns.MonthlyBreakdown(c.Request.Context(), employeeID, month)
	if err != nil {
		fail(c, "Commission breakdown", err)
		return
	}

	response.SuccessJSON(c, http.StatusOK, "", breakdown)
}
