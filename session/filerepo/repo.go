// Package filerepo persists the session as a YAML document on local disk.
package filerepo

import (
	"context"
	"os"
	"path/filepath"

	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/elousi1010/quanlyveso-sub000/session"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

var _ session.Repo = (*Repo)(nil)

// Repo stores one session record in a file. Saves go through a temporary
// file renamed over the old one, so readers see either the previous pair
// of tokens or the new one.
type Repo struct {
	path string
}

func New(path string) *Repo {
	return &Repo{path: path}
}

func (r *Repo) Path() string {
	return r.path
}

func (r *Repo) Load(ctx context.Context) (*session.Record, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.ErrRecordNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[filerepo.Load] read")
	}

	var record session.Record
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrapf(err, "[filerepo.Load] decode %s", r.path)
	}
	if record.AccessToken == "" && record.RefreshToken == "" && record.User == nil {
		return nil, apperrors.ErrRecordNotFound
	}
	return &record, nil
}

func (r *Repo) Save(ctx context.Context, record *session.Record) error {
	data, err := yaml.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[filerepo.Save] encode")
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return errors.Wrap(err, "[filerepo.Save] mkdir")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "[filerepo.Save] create temp")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[filerepo.Save] chmod")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[filerepo.Save] write")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[filerepo.Save] sync")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[filerepo.Save] close")
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return errors.Wrap(err, "[filerepo.Save] rename")
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context) error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "[filerepo.Delete] remove")
	}
	return nil
}
