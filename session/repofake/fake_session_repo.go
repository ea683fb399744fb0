package sessionrepofake

import (
	"context"
	"sync"

	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/elousi1010/quanlyveso-sub000/session"
)

var _ session.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo keeps the record in memory and counts writes
type FakeSessionRepo struct {
	record  *session.Record
	saves   int
	deletes int
	failErr error
	lock    sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

// Seed stores record as if a previous process had saved it
func (r *FakeSessionRepo) Seed(record *session.Record) {
	r.lock.Lock()
	defer r.lock.Unlock()
	cp := *record
	cp.User = record.User.Clone()
	r.record = &cp
}

// FailWith makes every subsequent Save and Delete return err (nil resets)
func (r *FakeSessionRepo) FailWith(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.failErr = err
}

func (r *FakeSessionRepo) Load(ctx context.Context) (*session.Record, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.record == nil {
		return nil, apperrors.ErrRecordNotFound
	}
	cp := *r.record
	cp.User = r.record.User.Clone()
	return &cp, nil
}

func (r *FakeSessionRepo) Save(ctx context.Context, record *session.Record) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	cp := *record
	cp.User = record.User.Clone()
	r.record = &cp
	r.saves++
	return nil
}

func (r *FakeSessionRepo) Delete(ctx context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.record = nil
	r.deletes++
	return nil
}

// Stored returns the persisted record, nil when none
func (r *FakeSessionRepo) Stored() *session.Record {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.record == nil {
		return nil
	}
	cp := *r.record
	return &cp
}

func (r *FakeSessionRepo) Saves() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.saves
}

func (r *FakeSessionRepo) Deletes() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.deletes
}
