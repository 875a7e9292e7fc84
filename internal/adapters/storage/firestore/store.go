// Package firestore stores conversation payloads as Firestore
// documents, one document per blob key.
package firestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lugia-ai/lugia/internal/domain"
)

type Store struct {
	client *firestore.Client
}

func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

type blobDoc struct {
	Payload   []byte    `firestore:"payload"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// doc maps a blob key like conversation_history/<file> onto a document
// in a collection named after the prefix. Keys without a prefix land in
// a "blobs" collection.
func (s *Store) doc(key string) *firestore.DocumentRef {
	col := "blobs"
	id := key
	if i := strings.LastIndex(key, "/"); i >= 0 {
		col = key[:i]
		id = key[i+1:]
	}
	return s.client.Collection(col).Doc(id)
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.doc(key).Set(ctx, blobDoc{
		Payload:   data,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("firestore put %s: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	snap, err := s.doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore get %s: %w", key, err)
	}

	var doc blobDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore decode %s: %w", key, err)
	}
	return doc.Payload, nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	col := strings.TrimSuffix(prefix, "/")
	if col == "" {
		col = "blobs"
	}

	iter := s.client.Collection(col).Documents(ctx)
	defer iter.Stop()

	var keys []string
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore list %s: %w", prefix, err)
		}
		keys = append(keys, col+"/"+snap.Ref.ID)
	}
	return keys, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("firestore stat %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	// Firestore deletes are idempotent; check first so a missing
	// conversation is reported instead of silently ignored.
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}

	if _, err := s.doc(key).Delete(ctx); err != nil {
		return fmt.Errorf("firestore delete %s: %w", key, err)
	}
	return nil
}
