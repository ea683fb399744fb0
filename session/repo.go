package session

import "context"

// Repo is the durable key-value store backing the session across restarts.
// Load returns errors.ErrRecordNotFound when nothing has been saved.
type Repo interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, record *Record) error
	Delete(ctx context.Context) error
}
