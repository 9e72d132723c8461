package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Identity is an opaque party identifier. The zero value means no party.
type Identity string

// NoIdentity is the absent party, used for the leader slot before the first
// valid bid and for the winner slot before finalization.
const NoIdentity Identity = ""

// AssetRef identifies one unique item held by a registry.
type AssetRef struct {
	Registry string    `json:"registry"`
	TokenID  uuid.UUID `json:"token_id"`
}

// AssetRegistry answers ownership queries and moves a unique item between
// parties. Transfer must fail without side effects when it cannot complete.
type AssetRegistry interface {
	OwnerOf(ref AssetRef) (Identity, error)
	Transfer(ref AssetRef, from, to Identity) error
}

// PaymentChannel moves native value to a party. Pay reports failure distinctly;
// the engine never treats a failed payout as delivered.
type PaymentChannel interface {
	Pay(to Identity, amount decimal.Decimal) error
}

// EventKind discriminates entries of the notification log.
type EventKind string

const (
	EventBidPlaced EventKind = "bid_placed"
	EventFinalized EventKind = "finalized"
	EventWithdrawn EventKind = "withdrawn"
)

// Event is one entry of the observable notification log.
//
// For bid_placed events Amount is the value added and Total the new cumulative
// total. For finalized events Amount is the winning amount; for withdrawn
// events it is the refunded amount. Total is zero for both.
type Event struct {
	Kind   EventKind       `json:"kind"`
	Bidder Identity        `json:"bidder,omitempty"`
	Amount decimal.Decimal `json:"amount"`
	Total  decimal.Decimal `json:"total"`
	At     time.Time       `json:"at"`
}

// EventSink receives auction notifications. Implementations must not call back
// into the auction.
type EventSink interface {
	Emit(Event)
}

type discardSink struct{}

func (discardSink) Emit(Event) {}
