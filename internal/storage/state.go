package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"retailflow/internal/domain"
)

// StatePersister round-trips the domain aggregate as one JSON blob under the
// fixed state key. It satisfies the store's Persister interface.
type StatePersister struct {
	kv KV
}

// NewStatePersister builds a persister over the given KV.
func NewStatePersister(kv KV) *StatePersister {
	return &StatePersister{kv: kv}
}

// Load deserializes the persisted aggregate. A missing blob reports
// found=false; an unparseable one reports an error so the caller can fall
// back to defaults.
func (p *StatePersister) Load(ctx context.Context) (domain.State, bool, error) {
	raw, found, err := p.kv.Get(ctx, StateKey)
	if err != nil {
		return domain.State{}, false, err
	}
	if !found {
		return domain.State{}, false, nil
	}
	var state domain.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.State{}, false, fmt.Errorf("failed to decode persisted state: %w", err)
	}
	return state, true, nil
}

// Save serializes the aggregate over the previous blob.
func (p *StatePersister) Save(ctx context.Context, state domain.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return p.kv.Put(ctx, StateKey, raw)
}

// SessionPersister round-trips the authenticated identity under the fixed
// auth session key.
type SessionPersister struct {
	kv KV
}

// NewSessionPersister builds a persister over the given KV.
func NewSessionPersister(kv KV) *SessionPersister {
	return &SessionPersister{kv: kv}
}

// Load deserializes the persisted identity, if any.
func (p *SessionPersister) Load(ctx context.Context) (domain.Identity, bool, error) {
	raw, found, err := p.kv.Get(ctx, SessionKey)
	if err != nil {
		return domain.Identity{}, false, err
	}
	if !found {
		return domain.Identity{}, false, nil
	}
	var identity domain.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return domain.Identity{}, false, fmt.Errorf("failed to decode persisted session: %w", err)
	}
	return identity, true, nil
}

// Save persists the identity.
func (p *SessionPersister) Save(ctx context.Context, identity domain.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return p.kv.Put(ctx, SessionKey, raw)
}

// Clear removes the persisted identity.
func (p *SessionPersister) Clear(ctx context.Context) error {
	return p.kv.Delete(ctx, SessionKey)
}
