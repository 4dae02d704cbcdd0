package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Snapshot is the persisted state of a detached session: enough to resume
// within the resume window spec.md §5 alludes to but leaves unspecified
// (see SPEC_FULL.md's session supplement). Data is an opaque blob the
// caller is responsible for encoding (typically the serialized signal
// values a resumed root needs to reconstruct itself).
type Snapshot struct {
	SessionID string
	SavedAt   time.Time
	Data      []byte
}

// Store persists and restores detached-session snapshots. Mirrors the
// teacher's pluggable pkg/session.SessionStore (memory/redis/sql); this
// module ships an in-memory implementation and an S3-backed one for a
// durable, infrequently-accessed backend.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, sessionID string) (Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore keeps snapshots in a map; state is lost on process restart.
// The always-available default, and what tests use.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]Snapshot
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Snapshot)}
}

func (s *MemoryStore) Save(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[snap.SessionID] = snap
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.data[sessionID]
	if !ok {
		return Snapshot{}, fmt.Errorf("session: no snapshot for %q", sessionID)
	}
	return snap, nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// S3Store persists snapshots as objects under bucket/prefix/<sessionID>,
// for a durable store that survives a process restart — the DOMAIN STACK's
// second storage SDK, given the same pluggable-backend role the teacher
// reserves for redis/sql SessionStore implementations.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store builds an S3Store from an already-resolved aws.Config (the
// caller loads credentials/region; this module does not depend on the
// aws-sdk-go-v2/config loader).
func NewS3Store(cfg aws.Config, bucket, prefix string) *S3Store {
	return &S3Store{client: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix}
}

func (s *S3Store) key(sessionID string) string {
	if s.prefix == "" {
		return sessionID
	}
	return s.prefix + "/" + sessionID
}

func (s *S3Store) Save(ctx context.Context, snap Snapshot) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(snap.SessionID)),
		Body:   bytes.NewReader(snap.Data),
	})
	return err
}

func (s *S3Store) Load(ctx context.Context, sessionID string) (Snapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(sessionID)),
	})
	if err != nil {
		return Snapshot{}, err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return Snapshot{}, err
	}
	savedAt := time.Now()
	if out.LastModified != nil {
		savedAt = *out.LastModified
	}
	return Snapshot{SessionID: sessionID, SavedAt: savedAt, Data: data}, nil
}

func (s *S3Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(sessionID)),
	})
	return err
}
