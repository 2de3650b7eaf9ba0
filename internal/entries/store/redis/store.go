// Package redis stores entries as JSON values with a per-user, per-domain
// index list.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"lifedash/internal/catalog"
	"lifedash/internal/entries/models"
	"lifedash/pkg/platform/sentinel"
)

const (
	entryKeyPrefix = "entry:"
	indexKeyPrefix = "entries:"
)

func entryKey(id string) string { return entryKeyPrefix + id }

func indexKey(userID string, domain catalog.Domain) string {
	return indexKeyPrefix + userID + ":" + string(domain)
}

// createScript stores the entry and indexes it as one step. Redis never
// rolls a script back, so a failed index push deletes the value it just set.
var createScript = redis.NewScript(`
if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
  return 0
end
local pushed = redis.pcall('LPUSH', KEYS[2], ARGV[2])
if type(pushed) == 'table' and pushed.err then
  redis.call('DEL', KEYS[1])
  return redis.error_reply(pushed.err)
end
return 1
`)

// Store keeps each entry under entry:<id> and pushes its id onto
// entries:<user>:<domain>, newest at the head.
type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Create(ctx context.Context, entry *models.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	keys := []string{entryKey(entry.ID), indexKey(entry.UserID, entry.Domain)}
	created, err := createScript.Run(ctx, s.client, keys, payload, entry.ID).Int()
	if err != nil {
		return fmt.Errorf("store entry: %w", err)
	}
	if created == 0 {
		return fmt.Errorf("entry %s: %w", entry.ID, sentinel.ErrConflict)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*models.Entry, error) {
	raw, err := s.client.Get(ctx, entryKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("entry %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load entry: %w", err)
	}
	return decode(raw)
}

// ListByUser returns the user's entries in a domain, newest first. A limit
// of zero or less returns all of them. Index ids whose value has vanished
// are skipped.
func (s *Store) ListByUser(ctx context.Context, userID string, domain catalog.Domain, limit int) ([]*models.Entry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.client.LRange(ctx, indexKey(userID, domain), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list entry ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = entryKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	out := make([]*models.Entry, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		entry, err := decode([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func decode(raw []byte) (*models.Entry, error) {
	var entry models.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode entry: %w", sentinel.ErrMalformed)
	}
	return &entry, nil
}
