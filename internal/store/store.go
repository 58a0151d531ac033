package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"psocial/internal/models"
	"psocial/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultKey is the fixed slot key holding the aggregate.
const DefaultKey = "psocial_db_v3"

// ErrNoChange may be returned by an Update callback to end the call
// successfully without writing the aggregate back.
var ErrNoChange = errors.New("no change")

// Repository is the whole-aggregate persistence contract the domain services
// depend on. A backend with real transactions may implement it directly.
type Repository interface {
	Load(ctx context.Context) (*models.Aggregate, error)
	Save(ctx context.Context, agg *models.Aggregate) error
	// Update loads, applies fn and saves. Nothing is saved when fn fails or
	// returns ErrNoChange.
	Update(ctx context.Context, fn func(*models.Aggregate) error) error
	// View loads and applies fn without saving.
	View(ctx context.Context, fn func(*models.Aggregate) error) error
}

// Store implements Repository over a Slot.
type Store struct {
	slot Slot
	key  string
	log  *observability.StoreLogger
	mu   sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// New returns a Store persisting to slot.
func New(slot Slot, opts ...Option) *Store {
	s := &Store{slot: slot, key: DefaultKey}
	for _, opt := range opts {
		opt(s)
	}
	s.log = observability.NewStoreLogger(slot.Name(), s.key)
	return s
}

// Slot returns the underlying slot.
func (s *Store) Slot() Slot { return s.slot }

// Key returns the slot key.
func (s *Store) Key() string { return s.key }

// Load reads the aggregate. An absent or undecodable blob yields a fresh
// empty aggregate; only slot I/O errors are returned.
func (s *Store) Load(ctx context.Context) (*models.Aggregate, error) {
	defer observability.TrackStore(s.slot.Name(), "load")()

	raw, err := s.slot.Get(ctx, s.key)
	if err != nil {
		s.log.LogError(ctx, err, "load")
		return nil, fmt.Errorf("load aggregate: %w", err)
	}
	if raw == nil {
		s.log.LogLoad(ctx, 0, true)
		return models.NewAggregate(), nil
	}

	agg := &models.Aggregate{}
	if err := json.Unmarshal(raw, agg); err != nil {
		observability.StoreCorruptBlobs.WithLabelValues(s.slot.Name()).Inc()
		s.log.LogCorrupt(ctx, err)
		return models.NewAggregate(), nil
	}
	agg.Normalize()
	s.log.LogLoad(ctx, len(raw), false)
	return agg, nil
}

// Save writes the whole aggregate.
func (s *Store) Save(ctx context.Context, agg *models.Aggregate) error {
	defer observability.TrackStore(s.slot.Name(), "save")()

	agg.SchemaVersion = models.CurrentSchemaVersion
	raw, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("encode aggregate: %w", err)
	}
	if err := s.slot.Set(ctx, s.key, raw); err != nil {
		s.log.LogError(ctx, err, "save")
		return fmt.Errorf("save aggregate: %w", err)
	}
	s.log.LogSave(ctx, len(raw))
	return nil
}

// Update runs one read-modify-write cycle.
func (s *Store) Update(ctx context.Context, fn func(*models.Aggregate) error) (err error) {
	span, ctx := observability.NewSpan(ctx, "store.update",
		attribute.String("store.backend", s.slot.Name()),
		attribute.String("store.key", s.key),
	)
	defer func() {
		span.SetError(err)
		span.End()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	agg, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(agg); err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}
	return s.Save(ctx, agg)
}

// View runs fn against a freshly loaded aggregate. Changes made by fn are
// discarded.
func (s *Store) View(ctx context.Context, fn func(*models.Aggregate) error) (err error) {
	span, ctx := observability.NewSpan(ctx, "store.view",
		attribute.String("store.backend", s.slot.Name()),
		attribute.String("store.key", s.key),
	)
	defer func() {
		span.SetError(err)
		span.End()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	agg, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return fn(agg)
}

// Close closes the underlying slot.
func (s *Store) Close() error {
	return s.slot.Close()
}
