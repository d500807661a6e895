package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/petfolio/reminder-dispatch/internal/domain"
)

const (
	dispatchLogKeyPrefix = "dispatch:log:"
)

type entryRecord struct {
	Key               string     `json:"key"`
	Kind              string     `json:"kind"`
	Status            string     `json:"status"`
	RecipientID       string     `json:"recipient_id"`
	Channel           string     `json:"channel"`
	Address           string     `json:"address"`
	Subject           string     `json:"subject,omitempty"`
	Body              string     `json:"body"`
	WatchID           string     `json:"watch_id,omitempty"`
	Band              string     `json:"band,omitempty"`
	Attempts          int        `json:"attempts"`
	ReservedAt        time.Time  `json:"reserved_at"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	ExternalMessageID string     `json:"external_message_id,omitempty"`
	FailureReason     string     `json:"failure_reason,omitempty"`
}

type redisDispatchLogStore struct {
	client *redis.Client
}

// NewRedisDispatchLogStore returns a dispatch log on redis. SETNX on the
// occurrence key is the reservation arbiter; entries are written without a
// TTL because the log is never deleted.
func NewRedisDispatchLogStore(client *redis.Client) domain.DispatchLogStore {
	return &redisDispatchLogStore{client: client}
}

func (s *redisDispatchLogStore) Reserve(ctx context.Context, entry *domain.DispatchLogEntry) (domain.ReserveOutcome, error) {
	if entry == nil || entry.Key == "" {
		return domain.ReserveLost, ErrInvalidEntryData
	}

	data, err := json.Marshal(toRecord(entry))
	if err != nil {
		return domain.ReserveLost, ErrInvalidEntryData
	}

	won, err := s.client.SetNX(ctx, dispatchLogKeyPrefix+entry.Key, data, 0).Result()
	if err != nil {
		return domain.ReserveLost, err
	}
	if !won {
		return domain.ReserveLost, nil
	}
	return domain.ReserveWon, nil
}

func (s *redisDispatchLogStore) Get(ctx context.Context, key string) (*domain.DispatchLogEntry, error) {
	data, err := s.client.Get(ctx, dispatchLogKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}

	var record entryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, ErrInvalidEntryData
	}
	return fromRecord(&record), nil
}

func (s *redisDispatchLogStore) MarkSent(ctx context.Context, key, externalMessageID string, sentAt time.Time) error {
	return s.update(ctx, key, func(r *entryRecord) {
		at := sentAt.UTC()
		r.Status = domain.StatusSent.String()
		r.SentAt = &at
		r.ExternalMessageID = externalMessageID
	})
}

func (s *redisDispatchLogStore) MarkFailed(ctx context.Context, key, reason string) error {
	return s.update(ctx, key, func(r *entryRecord) {
		r.Status = domain.StatusFailed.String()
		r.FailureReason = reason
	})
}

// recordAttemptScript bumps attempts only when the counter still holds the
// expected value. Server-side so two ticks racing over the same stale entry
// cannot both win the bump.
var recordAttemptScript = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
	return -1
end
local record = cjson.decode(data)
if record.attempts ~= tonumber(ARGV[1]) then
	return 0
end
record.attempts = record.attempts + 1
redis.call('SET', KEYS[1], cjson.encode(record), 'KEEPTTL')
return 1
`)

func (s *redisDispatchLogStore) RecordAttempt(ctx context.Context, key string, expected int) (bool, error) {
	res, err := recordAttemptScript.Run(ctx, s.client, []string{dispatchLogKeyPrefix + key}, expected).Int()
	if err != nil {
		return false, err
	}
	if res == -1 {
		return false, domain.ErrEntryNotFound
	}
	return res == 1, nil
}

func (s *redisDispatchLogStore) ListStaleReserved(ctx context.Context, olderThan time.Time, limit int) ([]*domain.DispatchLogEntry, error) {
	stale := make([]*domain.DispatchLogEntry, 0)

	iter := s.client.Scan(ctx, 0, dispatchLogKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if len(stale) >= limit {
			break
		}

		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}

		var record entryRecord
		if err := json.Unmarshal(data, &record); err != nil {
			continue
		}
		if record.Status != domain.StatusReserved.String() {
			continue
		}
		if !record.ReservedAt.Before(olderThan) {
			continue
		}
		stale = append(stale, fromRecord(&record))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return stale, nil
}

func (s *redisDispatchLogStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// update applies fn to the entry under key. Reservation already serialized
// ownership of the key, so read-modify-write is safe here.
func (s *redisDispatchLogStore) update(ctx context.Context, key string, fn func(*entryRecord)) error {
	fullKey := dispatchLogKeyPrefix + key

	data, err := s.client.Get(ctx, fullKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ErrEntryNotFound
		}
		return err
	}

	var record entryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return ErrInvalidEntryData
	}

	fn(&record)

	updated, err := json.Marshal(&record)
	if err != nil {
		return ErrInvalidEntryData
	}
	return s.client.Set(ctx, fullKey, updated, redis.KeepTTL).Err()
}

func toRecord(e *domain.DispatchLogEntry) *entryRecord {
	return &entryRecord{
		Key:               e.Key,
		Kind:              string(e.Kind),
		Status:            e.Status.String(),
		RecipientID:       e.RecipientID,
		Channel:           e.Channel.String(),
		Address:           e.Address,
		Subject:           e.Subject,
		Body:              e.Body,
		WatchID:           e.WatchID,
		Band:              e.Band.String(),
		Attempts:          e.Attempts,
		ReservedAt:        e.ReservedAt,
		SentAt:            e.SentAt,
		ExternalMessageID: e.ExternalMessageID,
		FailureReason:     e.FailureReason,
	}
}

func fromRecord(r *entryRecord) *domain.DispatchLogEntry {
	return &domain.DispatchLogEntry{
		Key:               r.Key,
		Kind:              domain.OccurrenceKind(r.Kind),
		Status:            domain.DispatchStatus(r.Status),
		RecipientID:       r.RecipientID,
		Channel:           domain.Channel(r.Channel),
		Address:           r.Address,
		Subject:           r.Subject,
		Body:              r.Body,
		WatchID:           r.WatchID,
		Band:              domain.Threshold(r.Band),
		Attempts:          r.Attempts,
		ReservedAt:        r.ReservedAt,
		SentAt:            r.SentAt,
		ExternalMessageID: r.ExternalMessageID,
		FailureReason:     r.FailureReason,
	}
}
