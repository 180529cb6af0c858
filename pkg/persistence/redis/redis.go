// Package redis provides Redis persistence for recordings, actions and
// archive snapshots. Entities are JSON documents under typed keys with a
// set per entity kind as the index; the change sequence is a plain INCR
// counter.
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/recapd/recapd/pkg/persistence"
)

const (
	recordingKeyPrefix = "recapd:recording:"
	actionKeyPrefix    = "recapd:action:"
	archiveKeyPrefix   = "recapd:archive:"

	recordingIndexKey = "recapd:recordings"
	actionIndexKey    = "recapd:actions"
	archiveIndexKey   = "recapd:archives"

	changeSeqKey = "recapd:change_seq"
)

// Persistence implements persistence.Persistence on Redis.
type Persistence struct {
	client goredis.UniversalClient

	recordings *RecordingRepository
	actions    *ActionRepository
	archive    *ArchiveRepository
}

// NewPersistence connects to Redis using the given URL
// (redis://[user:pass@]host:port/db).
func NewPersistence(ctx context.Context, redisURL string) (*Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return newPersistence(client), nil
}

// NewPersistenceWithClient wraps an existing client. Used by tests.
func NewPersistenceWithClient(client goredis.UniversalClient) *Persistence {
	return newPersistence(client)
}

func newPersistence(client goredis.UniversalClient) *Persistence {
	p := &Persistence{client: client}
	p.recordings = &RecordingRepository{p: p}
	p.actions = &ActionRepository{p: p}
	p.archive = &ArchiveRepository{p: p}

	return p
}

func (p *Persistence) Recordings() persistence.RecordingRepository {
	return p.recordings
}

func (p *Persistence) Actions() persistence.ActionRepository {
	return p.actions
}

func (p *Persistence) Archive() persistence.ArchiveRepository {
	return p.archive
}

func (p *Persistence) ChangeSeq(ctx context.Context) (uint64, error) {
	seq, err := p.client.Get(ctx, changeSeqKey).Uint64()
	if err == goredis.Nil {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to read change sequence: %w", err)
	}

	return seq, nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

func (p *Persistence) bump(ctx context.Context) error {
	if err := p.client.Incr(ctx, changeSeqKey).Err(); err != nil {
		return fmt.Errorf("failed to bump change sequence: %w", err)
	}

	return nil
}
