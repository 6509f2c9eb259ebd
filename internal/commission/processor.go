// Package commission attributes performance and commission amounts to the
// employees who sold or delivered an item, writing one ledger row per
// (item, employee) pair.
package commission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"commission-api/internal/apperr"
	"commission-api/internal/models"
	"commission-api/internal/response"
	"commission-api/pkg/logging"
)

// Store persists commission records.
type Store interface {
	CreateEmployeeCommission(ctx context.Context, record *models.EmployeeCommission) error
	// WithinTransaction runs fn against a Store bound to one database
	// transaction, committing when fn returns nil.
	WithinTransaction(ctx context.Context, fn func(Store) error) error
}

// Outcome is the response the attribution step decided on.
type Outcome struct {
	Status  int
	Body    any
	Records []models.EmployeeCommission
}

// Processor runs the attribution step for the three transaction flows.
type Processor struct {
	store      Store
	validate   *validator.Validate
	atomic     bool
	onRecorded func(ctx context.Context, records []models.EmployeeCommission)
}

type Option func(*Processor)

// WithAtomicFanout makes every attribution run all-or-nothing.
func WithAtomicFanout(atomic bool) Option {
	return func(p *Processor) {
		p.atomic = atomic
	}
}

// WithRecordedHook registers fn to be called with the rows that were written,
// including rows left behind by a failed non-atomic run.
func WithRecordedHook(fn func(ctx context.Context, records []models.EmployeeCommission)) Option {
	return func(p *Processor) {
		p.onRecorded = fn
	}
}

// NewProcessor returns a Processor writing to store. Fan-out is atomic unless
// WithAtomicFanout(false) is given.
func NewProcessor(store Store, opts ...Option) *Processor {
	if store == nil {
		panic("commission.NewProcessor: nil store")
	}
	p := &Processor{
		store:    store,
		validate: newValidator(),
		atomic:   true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckMCP rejects a care package request whose assignments ApplyMCP would
// refuse on the request body alone.
func (p *Processor) CheckMCP(req AssignmentRequest) error {
	assignments, err := mcpAssignments(req)
	if err != nil {
		return err
	}
	return p.checkEach(assignments, "assignedEmployee")
}

// CheckMV is CheckMCP for voucher requests, where no assignment is fine.
func (p *Processor) CheckMV(req AssignmentRequest) error {
	assignments, err := parseAssignments(req.raw())
	if err != nil {
		return apperr.Validation("%v", err)
	}
	return p.checkEach(assignments, "assignedEmployee")
}

// CheckSaleLines rejects sale lines ApplyServicesProducts would refuse on
// their content alone. The created-id count can only be checked afterwards.
func (p *Processor) CheckSaleLines(lines []SaleLine) error {
	for i, line := range lines {
		assignments, err := parseAssignments(line.AssignedEmployee)
		if err != nil {
			return apperr.Validation("items[%d]: %v", i, err)
		}
		if len(assignments) == 0 {
			continue
		}
		if _, ok := saleFamily(line.Type); !ok {
			return apperr.Validation("items[%d]: unsupported item type %q, expected service or product", i, line.Type)
		}
		if err := p.checkEach(assignments, fmt.Sprintf("items[%d].assignedEmployee", i)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) checkEach(assignments []Assignment, field string) error {
	for j, a := range assignments {
		if err := check(p.validate, a, field+"["+strconv.Itoa(j)+"]"); err != nil {
			return err
		}
	}
	return nil
}

func mcpAssignments(req AssignmentRequest) ([]Assignment, error) {
	assignments, err := parseAssignments(req.raw())
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}
	if len(assignments) == 0 {
		return nil, apperr.Validation("assignedEmployee must be a non-empty list")
	}
	return assignments, nil
}

// ApplyMCP attributes a member care package purchase or consumption.
func (p *Processor) ApplyMCP(ctx context.Context, upstream UpstreamResult, req AssignmentRequest) (*Outcome, error) {
	assignments, err := mcpAssignments(req)
	if err != nil {
		return nil, err
	}

	kind, itemIDs, ok := resolve(upstream)
	if !ok {
		return nil, apperr.UnresolvableContext(http.StatusBadRequest,
			"no member care package transaction or consumption result to attribute commissions to")
	}

	itemType, err := ItemTypeFor(kind, FamilyCarePackage)
	if err != nil {
		return nil, err
	}

	pairs := crossProduct(itemIDs, assignments, itemType)
	records, err := p.persist(ctx, pairs)
	if err != nil {
		return nil, err
	}

	return respond(upstream, records), nil
}

// ApplyMV attributes a member voucher purchase or consumption. Without any
// assignment the upstream response is forwarded as is.
func (p *Processor) ApplyMV(ctx context.Context, upstream UpstreamResult, req AssignmentRequest) (*Outcome, error) {
	assignments, err := parseAssignments(req.raw())
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}

	if len(assignments) == 0 {
		switch r := upstream.(type) {
		case Purchase:
			return &Outcome{Status: http.StatusCreated, Body: r.Payload}, nil
		case Consumption:
			return &Outcome{Status: http.StatusCreated, Body: map[string]any{"message": r.Message}}, nil
		default:
			return nil, apperr.UnresolvableContext(http.StatusInternalServerError,
				"member voucher transaction produced no result")
		}
	}

	kind, itemIDs, ok := resolve(upstream)
	if !ok {
		return nil, apperr.UnresolvableContext(http.StatusBadRequest,
			"no member voucher purchase or consumption result to attribute commissions to")
	}

	itemType, err := ItemTypeFor(kind, FamilyVoucher)
	if err != nil {
		return nil, err
	}

	pairs := crossProduct(itemIDs, assignments, itemType)
	records, err := p.persist(ctx, pairs)
	if err != nil {
		return nil, err
	}

	return respond(upstream, records), nil
}

// SaleLine is one services/products line of a sale request.
type SaleLine struct {
	Type             string          `json:"type"`
	AssignedEmployee json.RawMessage `json:"assignedEmployee,omitempty"`
}

// ApplyServicesProducts attributes the lines of a services/products sale.
// createdItemIds must line up with lines by position. The upstream payload is
// always answered with 201 whether or not commissions were written.
func (p *Processor) ApplyServicesProducts(ctx context.Context, upstream UpstreamResult, lines []SaleLine) (*Outcome, error) {
	sale, ok := upstream.(Sale)
	if !ok {
		return nil, apperr.UnresolvableContext(http.StatusInternalServerError, "sale produced no created item ids")
	}

	perLine := make([][]Assignment, len(lines))
	assigned := false
	for i, line := range lines {
		assignments, err := parseAssignments(line.AssignedEmployee)
		if err != nil {
			return nil, apperr.Validation("items[%d]: %v", i, err)
		}
		perLine[i] = assignments
		if len(assignments) > 0 {
			assigned = true
		}
	}
	if !assigned {
		return &Outcome{Status: http.StatusCreated, Body: sale.Payload}, nil
	}

	if len(sale.CreatedItemIDs) != len(lines) {
		return nil, apperr.IntegrityMismatch("created item count %d does not match item count %d",
			len(sale.CreatedItemIDs), len(lines))
	}

	var pairs []pair
	for i, line := range lines {
		if len(perLine[i]) == 0 {
			continue
		}
		family, ok := saleFamily(line.Type)
		if !ok {
			return nil, apperr.Validation("items[%d]: unsupported item type %q, expected service or product", i, line.Type)
		}
		itemType, err := ItemTypeFor(EventPurchase, family)
		if err != nil {
			return nil, err
		}
		for j, a := range perLine[i] {
			pairs = append(pairs, pair{
				itemID:     sale.CreatedItemIDs[i],
				itemType:   itemType,
				assignment: a,
				position:   fmt.Sprintf("items[%d].assignedEmployee[%d]", i, j),
			})
		}
	}

	records, err := p.persist(ctx, pairs)
	if err != nil {
		return nil, err
	}

	return &Outcome{Status: http.StatusCreated, Body: sale.Payload, Records: records}, nil
}

// resolve picks the event kind and item ids out of an upstream result.
func resolve(upstream UpstreamResult) (EventKind, []string, bool) {
	switch r := upstream.(type) {
	case Purchase:
		if r.ItemID != "" {
			return EventPurchase, []string{r.ItemID}, true
		}
	case Consumption:
		if len(r.ItemIDs) > 0 {
			return EventConsumption, r.ItemIDs, true
		}
	}
	return 0, nil, false
}

func respond(upstream UpstreamResult, records []models.EmployeeCommission) *Outcome {
	if r, ok := upstream.(Consumption); ok {
		return &Outcome{
			Status: http.StatusOK,
			Body: response.Response{
				Success: true,
				Message: r.Message,
				Data:    r.Results,
			},
			Records: records,
		}
	}
	return &Outcome{Status: http.StatusCreated, Body: upstream.(Purchase).Payload, Records: records}
}

type pair struct {
	itemID     string
	itemType   models.ItemType
	assignment Assignment
	position   string
}

func crossProduct(itemIDs []string, assignments []Assignment, itemType models.ItemType) []pair {
	pairs := make([]pair, 0, len(itemIDs)*len(assignments))
	for _, itemID := range itemIDs {
		for j, a := range assignments {
			pairs = append(pairs, pair{
				itemID:     itemID,
				itemType:   itemType,
				assignment: a,
				position:   "assignedEmployee[" + strconv.Itoa(j) + "]",
			})
		}
	}
	return pairs
}

// persist validates and writes pairs in order, stopping at the first invalid
// pair or failed insert. All pairs share one batch id.
func (p *Processor) persist(ctx context.Context, pairs []pair) ([]models.EmployeeCommission, error) {
	batchID := uuid.New()
	written := make([]models.EmployeeCommission, 0, len(pairs))

	run := func(store Store) error {
		for _, pr := range pairs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := check(p.validate, pr.assignment, pr.position); err != nil {
				return err
			}
			record := pr.assignment.record(pr.itemID, pr.itemType)
			record.BatchID = batchID
			if err := store.CreateEmployeeCommission(ctx, &record); err != nil {
				return apperr.Persistence(err)
			}
			written = append(written, record)
		}
		return nil
	}

	var err error
	if p.atomic {
		err = p.store.WithinTransaction(ctx, run)
		if err != nil {
			written = nil
		}
	} else {
		err = run(p.store)
	}

	if len(written) > 0 && p.onRecorded != nil {
		p.onRecorded(ctx, written)
	}

	if err != nil {
		var appErr *apperr.Error
		if !errors.As(err, &appErr) && ctx.Err() == nil {
			err = apperr.Persistence(err)
		}
		if len(written) > 0 {
			logging.Warnf("Commission fan-out stopped after %d of %d record(s) - batch: %s, error: %v",
				len(written), len(pairs), batchID, err)
		}
		return nil, err
	}

	logging.Infof("Recorded %d commission record(s) - batch: %s", len(written), batchID)
	return written, nil
}
