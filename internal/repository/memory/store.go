// Package memory holds repositories backed by process memory. They implement
// the same interfaces as the postgresql package so service and handler tests
// run without a database.
package memory

import (
	"context"
	"sync"
)

// Store is the shared state of the in-memory repositories. One mutex guards
// every table, so a transaction is simply holding it.
type Store struct {
	mu sync.Mutex

	employees      map[int64]*employeeRow
	training       map[int64]*trainingRow
	nextEmployeeID int64
	nextTrainingID int64
}

func NewStore() *Store {
	return &Store{
		employees: make(map[int64]*employeeRow),
		training:  make(map[int64]*trainingRow),
	}
}

type lockedKey struct{}

// lock takes the store mutex unless ctx already belongs to a transaction
// holding it. The returned func releases what was taken.
func (s *Store) lock(ctx context.Context) func() {
	if held, _ := ctx.Value(lockedKey{}).(*Store); held == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTransaction runs fn with the store locked. Changes made before an
// error are rolled back from a snapshot.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if held, _ := ctx.Value(lockedKey{}).(*Store); held == s {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	if err := fn(context.WithValue(ctx, lockedKey{}, s)); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type storeSnapshot struct {
	employees      map[int64]*employeeRow
	training       map[int64]*trainingRow
	nextEmployeeID int64
	nextTrainingID int64
}

func (s *Store) snapshot() storeSnapshot {
	snap := storeSnapshot{
		employees:      make(map[int64]*employeeRow, len(s.employees)),
		training:       make(map[int64]*trainingRow, len(s.training)),
		nextEmployeeID: s.nextEmployeeID,
		nextTrainingID: s.nextTrainingID,
	}
	for id, row := range s.employees {
		c := row.clone()
		snap.employees[id] = &c
	}
	for id, row := range s.training {
		c := *row
		snap.training[id] = &c
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.employees = snap.employees
	s.training = snap.training
	s.nextEmployeeID = snap.nextEmployeeID
	s.nextTrainingID = snap.nextTrainingID
}
