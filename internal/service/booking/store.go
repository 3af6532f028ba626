package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	apperrors "github.com/kientrank3/revita-scheduling-api/pkg/errors"
)

// FlowStore keeps live wizard instances, one per booking session.
// Abandoned flows expire with the TTL instead of leaking.
type FlowStore struct {
	flows *cache.Cache
}

func NewFlowStore(ttl time.Duration) *FlowStore {
	return &FlowStore{flows: cache.New(ttl, ttl/2)}
}

// Put stores a flow and refreshes its TTL.
func (s *FlowStore) Put(flow *Flow) {
	s.flows.SetDefault(flow.ID().String(), flow)
}

// Get returns the flow or a not-found error if it expired or never existed.
func (s *FlowStore) Get(id uuid.UUID) (*Flow, error) {
	v, ok := s.flows.Get(id.String())
	if !ok {
		return nil, apperrors.NewNotFound("booking flow", nil)
	}
	return v.(*Flow), nil
}

// Delete discards a flow (submit, cancel or reset).
func (s *FlowStore) Delete(id uuid.UUID) {
	s.flows.Delete(id.String())
}
