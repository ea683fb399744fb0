// Package redisrepo persists the session in Redis under fixed keys.
package redisrepo

import (
	"context"
	"encoding/json"

	apperrors "github.com/elousi1010/quanlyveso-sub000/internal/errors"
	"github.com/elousi1010/quanlyveso-sub000/session"
	"github.com/elousi1010/quanlyveso-sub000/token"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
	stateKey        = "state"
)

var _ session.Repo = (*Repo)(nil)

// persistedState is the {user, isAuthenticated} blob stored next to the tokens
type persistedState struct {
	User            *token.Claims `json:"user,omitempty"`
	IsAuthenticated bool          `json:"isAuthenticated"`
}

// Repo keeps the record in three keys under a namespace. Writes run in a
// MULTI/EXEC transaction that deletes the old keys first, so the token pair
// and the state blob always come from the same save.
type Repo struct {
	client    redis.UniversalClient
	namespace string
}

func New(client redis.UniversalClient, namespace string) (*Repo, error) {
	if client == nil {
		return nil, errors.New("[redisrepo.New] client is required")
	}
	if namespace == "" {
		return nil, errors.New("[redisrepo.New] namespace is required")
	}
	return &Repo{client: client, namespace: namespace}, nil
}

func (r *Repo) key(name string) string {
	return r.namespace + ":" + name
}

func (r *Repo) keys() []string {
	return []string{r.key(accessTokenKey), r.key(refreshTokenKey), r.key(stateKey)}
}

func (r *Repo) Load(ctx context.Context) (*session.Record, error) {
	values, err := r.client.MGet(ctx, r.keys()...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "[redisrepo.Load] MGET")
	}

	access, _ := values[0].(string)
	refresh, _ := values[1].(string)
	stateRaw, _ := values[2].(string)
	if access == "" && refresh == "" && stateRaw == "" {
		return nil, apperrors.ErrRecordNotFound
	}

	record := &session.Record{AccessToken: access, RefreshToken: refresh}
	if stateRaw != "" {
		var st persistedState
		if err := json.Unmarshal([]byte(stateRaw), &st); err != nil {
			return nil, errors.Wrap(err, "[redisrepo.Load] decode state")
		}
		record.User = st.User
		record.IsAuthenticated = st.IsAuthenticated
	}
	return record, nil
}

func (r *Repo) Save(ctx context.Context, record *session.Record) error {
	stateRaw, err := json.Marshal(persistedState{User: record.User, IsAuthenticated: record.IsAuthenticated})
	if err != nil {
		return errors.Wrap(err, "[redisrepo.Save] encode state")
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.keys()...)
		if record.AccessToken != "" {
			pipe.Set(ctx, r.key(accessTokenKey), record.AccessToken, 0)
		}
		if record.RefreshToken != "" {
			pipe.Set(ctx, r.key(refreshTokenKey), record.RefreshToken, 0)
		}
		pipe.Set(ctx, r.key(stateKey), stateRaw, 0)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "[redisrepo.Save] MULTI")
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.keys()...).Err(); err != nil {
		return errors.Wrap(err, "[redisrepo.Delete] DEL")
	}
	return nil
}
