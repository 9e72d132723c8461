// Package registry provides an in-memory registry of unique, non-fungible
// items. It implements the asset boundary the auction engine settles against:
// ownership lookup and an atomic, ownership-guarded transfer.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cloudx-io/openlot/core"
)

var (
	ErrUnknownAsset  = errors.New("registry: unknown asset")
	ErrWrongRegistry = errors.New("registry: asset belongs to another registry")
	ErrNotOwner      = errors.New("registry: transfer from non-owner")

	// ErrFrozen models registry-side access revocation: the item exists but
	// transfers are currently declined.
	ErrFrozen = errors.New("registry: transfers frozen for asset")
)

// Registry tracks one owner per token. Safe for concurrent use.
type Registry struct {
	name string

	mu     sync.Mutex
	owners map[uuid.UUID]core.Identity
	frozen map[uuid.UUID]bool
}

// New creates an empty registry with the given name. The name is embedded in
// every AssetRef this registry mints and checked on every lookup.
func New(name string) *Registry {
	return &Registry{
		name:   name,
		owners: make(map[uuid.UUID]core.Identity),
		frozen: make(map[uuid.UUID]bool),
	}
}

// Name returns the registry's name.
func (r *Registry) Name() string { return r.name }

// Mint creates a new unique item owned by owner and returns its reference.
func (r *Registry) Mint(owner core.Identity) core.AssetRef {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New()
	r.owners[id] = owner
	return core.AssetRef{Registry: r.name, TokenID: id}
}

// OwnerOf returns the current owner of the referenced item.
func (r *Registry) OwnerOf(ref core.AssetRef) (core.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, err := r.lookup(ref)
	if err != nil {
		return core.NoIdentity, err
	}
	return owner, nil
}

// Transfer moves the item from from to to. It fails without side effects when
// the item is unknown, frozen, or not owned by from.
func (r *Registry) Transfer(ref core.AssetRef, from, to core.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, err := r.lookup(ref)
	if err != nil {
		return err
	}
	if r.frozen[ref.TokenID] {
		return fmt.Errorf("%w: token %s", ErrFrozen, ref.TokenID)
	}
	if owner != from {
		return fmt.Errorf("%w: token %s is owned by %q", ErrNotOwner, ref.TokenID, owner)
	}
	r.owners[ref.TokenID] = to
	return nil
}

// SetFrozen toggles transfer freezing for one item. Lookups keep working.
func (r *Registry) SetFrozen(ref core.AssetRef, frozen bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen[ref.TokenID] = frozen
}

func (r *Registry) lookup(ref core.AssetRef) (core.Identity, error) {
	if ref.Registry != r.name {
		return core.NoIdentity, fmt.Errorf("%w: got %q, want %q", ErrWrongRegistry, ref.Registry, r.name)
	}
	owner, ok := r.owners[ref.TokenID]
	if !ok {
		return core.NoIdentity, fmt.Errorf("%w: token %s", ErrUnknownAsset, ref.TokenID)
	}
	return owner, nil
}

var _ core.AssetRegistry = (*Registry)(nil)
