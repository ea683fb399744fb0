package fakeuserrepo

import (
	"sync"
	"time"

	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/elousi1010/quanlyveso-sub000/users"
	"github.com/google/uuid"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[string]*users.User
	phoneIds map[string]string // phone number to user id
	lock     sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		phoneIds: make(map[string]string),
	}
}

// Upsert assigns an ID to new users. A phone number already owned by
// another account is rejected with ErrPhoneNumberTaken.
func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if id, ok := ur.phoneIds[user.PhoneNumber]; ok && id != user.ID {
		return apperrors.ErrPhoneNumberTaken
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if prev, ok := ur.users[user.ID]; ok && prev.PhoneNumber != user.PhoneNumber {
		delete(ur.phoneIds, prev.PhoneNumber)
	}
	ur.users[user.ID] = user.Clone()
	ur.phoneIds[user.PhoneNumber] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByPhoneNumber(phoneNumber string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.phoneIds[phoneNumber]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return ur.users[id].Clone(), nil
}

func (ur *FakeUserRepo) GetByID(id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (ur *FakeUserRepo) SetBlocked(phoneNumber string, blocked bool) error {
	return ur.modify(phoneNumber, func(u *users.User) { u.Blocked = blocked })
}

func (ur *FakeUserRepo) SetLastLogin(phoneNumber string, at time.Time) error {
	return ur.modify(phoneNumber, func(u *users.User) { u.LastLogin = at })
}

func (ur *FakeUserRepo) modify(phoneNumber string, fn func(*users.User)) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	id, ok := ur.phoneIds[phoneNumber]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	fn(ur.users[id])
	return nil
}
