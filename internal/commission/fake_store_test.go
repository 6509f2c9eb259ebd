package commission

import (
	"context"
	"errors"

	"commission-api/internal/models"
)

var errInsertFailed = errors.New("insert failed")

// fakeStore keeps committed rows in memory. failOn makes the n-th insert
// (1-based, counted across calls) fail.
type fakeStore struct {
	committed []models.EmployeeCommission
	inserts   int
	failOn    int
	txCount   int
}

func (f *fakeStore) CreateEmployeeCommission(_ context.Context, record *models.EmployeeCommission) error {
	f.inserts++
	if f.failOn > 0 && f.inserts == f.failOn {
		return errInsertFailed
	}
	record.ID = uint(len(f.committed) + 1)
	f.committed = append(f.committed, *record)
	return nil
}

func (f *fakeStore) WithinTransaction(ctx context.Context, fn func(Store) error) error {
	f.txCount++
	snapshot := len(f.committed)
	if err := fn(f); err != nil {
		f.committed = f.committed[:snapshot]
		return err
	}
	return nil
}
