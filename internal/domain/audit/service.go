package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	store StoreAPI
	Now   func() time.Time
}

func New(store StoreAPI) *Service {
	return &Service{store: store, Now: time.Now}
}

// Record appends one event. before and after are stored as JSON when non-nil.
func (s *Service) Record(ctx context.Context, meta Meta, action, entityType, entityID string, before, after any) error {
	beforeJSON, err := marshal(before)
	if err != nil {
		return err
	}
	afterJSON, err := marshal(after)
	if err != nil {
		return err
	}
	return s.store.Insert(ctx, Event{
		ID:         uuid.NewString(),
		ActorID:    meta.ActorID,
		ActorRole:  meta.ActorRole,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  meta.RequestID,
		IP:         meta.IP,
		CreatedAt:  s.Now().UTC(),
		Before:     beforeJSON,
		After:      afterJSON,
	})
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	return s.store.Count(ctx, filter)
}

func (s *Service) List(ctx context.Context, filter Filter, includeDetails bool, limit, offset int) ([]Event, error) {
	return s.store.List(ctx, filter, includeDetails, limit, offset)
}

func marshal(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
