package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Auction is the state machine for one single-lot ascending auction over a
// unique asset. It is simultaneously the bid ledger, the ranking rule, and the
// settlement orchestrator: bidders raise cumulative public bids until the
// deadline, then exactly one finalize transition moves the asset to the leader
// and the winning amount to the seller, after which losing bidders drain their
// entries via Withdraw.
//
// An Auction runs one operation at a time. Callers must serialize access, for
// example by holding a lock for the duration of each call. Collaborator calls
// made during Finalize and Withdraw may re-enter the engine on the same
// goroutine; the update ordering inside those operations keeps reentrant calls
// harmless.
type Auction struct {
	seller   Identity
	asset    AssetRef
	deadline time.Time

	bids          map[Identity]decimal.Decimal
	highestBidder Identity
	highestBid    decimal.Decimal

	finalized  bool
	winner     Identity
	winningBid decimal.Decimal

	registry AssetRegistry
	payments PaymentChannel
	events   EventSink

	now func() time.Time
}

// Config carries the immutable parameters and collaborators of an auction.
type Config struct {
	Seller   Identity
	Asset    AssetRef
	Deadline time.Time

	Registry AssetRegistry
	Payments PaymentChannel

	// Events receives the notification log. Optional.
	Events EventSink

	// Now overrides the clock used for deadline checks. Defaults to time.Now.
	Now func() time.Time
}

// NewAuction constructs the auction after verifying that the seller currently
// owns the referenced asset. Seller, asset, and deadline are fixed forever.
func NewAuction(cfg Config) (*Auction, error) {
	if cfg.Seller == NoIdentity {
		return nil, fmt.Errorf("auction: seller is required")
	}
	if cfg.Registry == nil || cfg.Payments == nil {
		return nil, fmt.Errorf("auction: asset registry and payment channel are required")
	}
	owner, err := cfg.Registry.OwnerOf(cfg.Asset)
	if err != nil {
		return nil, fmt.Errorf("query asset owner: %w", err)
	}
	if owner != cfg.Seller {
		return nil, fmt.Errorf("%w: token %s is owned by %q", ErrNotAssetOwner, cfg.Asset.TokenID, owner)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	events := cfg.Events
	if events == nil {
		events = discardSink{}
	}

	return &Auction{
		seller:   cfg.Seller,
		asset:    cfg.Asset,
		deadline: cfg.Deadline,
		bids:     make(map[Identity]decimal.Decimal),
		registry: cfg.Registry,
		payments: cfg.Payments,
		events:   events,
		now:      now,
	}, nil
}

// PlaceBid adds addedAmount to the bidder's cumulative total and re-evaluates
// the leader. The leader only changes on a strictly greater total, so a tie
// keeps the incumbent: first to reach an amount wins it.
func (a *Auction) PlaceBid(bidder Identity, addedAmount decimal.Decimal) error {
	if !a.now().Before(a.deadline) {
		return ErrAuctionClosed
	}
	if bidder == NoIdentity {
		return fmt.Errorf("auction: bidder is required")
	}
	if !addedAmount.IsPositive() {
		return ErrZeroBid
	}

	total := a.bids[bidder].Add(addedAmount)
	a.bids[bidder] = total
	if total.GreaterThan(a.highestBid) {
		a.highestBidder = bidder
		a.highestBid = total
	}

	a.events.Emit(Event{
		Kind:   EventBidPlaced,
		Bidder: bidder,
		Amount: addedAmount,
		Total:  total,
		At:     a.now(),
	})
	return nil
}

// SetBidTo raises the bidder's cumulative total to exactly targetTotal. The
// caller states the desired total instead of computing a delta; suppliedAmount
// must cover exactly the difference. Admission and ranking are PlaceBid's.
func (a *Auction) SetBidTo(bidder Identity, targetTotal, suppliedAmount decimal.Decimal) error {
	current := a.bids[bidder]
	if !targetTotal.GreaterThan(current) {
		return ErrBidNotIncreasing
	}
	if !suppliedAmount.Equal(targetTotal.Sub(current)) {
		return ErrAmountMismatch
	}
	return a.PlaceBid(bidder, suppliedAmount)
}

// Finalize settles the auction: the asset moves to the leader and the winning
// amount moves to the seller, as one all-or-nothing unit. Anyone may call it
// once the deadline has passed.
func (a *Auction) Finalize() error {
	if a.now().Before(a.deadline) {
		return ErrAuctionStillOpen
	}
	if a.finalized {
		return ErrAlreadyFinalized
	}
	if a.highestBidder == NoIdentity {
		return ErrNoBids
	}
	return a.settle()
}

// settle runs the finalize effect. Preconditions are the caller's problem.
//
// The finalized flag and winner record are staged before the collaborator
// calls, so a reentrant Finalize during either call fails with
// ErrAlreadyFinalized instead of settling twice. Any collaborator failure
// restores the exact pre-call state; a payout failure additionally undoes the
// asset move. The winner's ledger entry stays populated on purpose: it is the
// record Withdraw consults to bar the winner from refunding.
func (a *Auction) settle() error {
	winner := a.highestBidder
	amount := a.highestBid

	a.finalized = true
	a.winner = winner
	a.winningBid = amount
	a.highestBidder = NoIdentity
	a.highestBid = decimal.Zero

	rollback := func() {
		a.finalized = false
		a.winner = NoIdentity
		a.winningBid = decimal.Zero
		a.highestBidder = winner
		a.highestBid = amount
	}

	if err := a.registry.Transfer(a.asset, a.seller, winner); err != nil {
		rollback()
		return fmt.Errorf("asset transfer: %w: %w", ErrTransferFailed, err)
	}

	if err := a.payments.Pay(a.seller, amount); err != nil {
		if undoErr := a.registry.Transfer(a.asset, winner, a.seller); undoErr != nil {
			rollback()
			return errors.Join(
				fmt.Errorf("seller payout: %w: %w", ErrTransferFailed, err),
				fmt.Errorf("restore asset to seller: %w", undoErr),
			)
		}
		rollback()
		return fmt.Errorf("seller payout: %w: %w", ErrTransferFailed, err)
	}

	a.events.Emit(Event{
		Kind:   EventFinalized,
		Bidder: winner,
		Amount: amount,
		At:     a.now(),
	})
	return nil
}

// Withdraw refunds the caller's full committed amount after finalization. When
// the deadline has passed, at least one bid exists, and nobody has finalized
// yet, the withdrawal attempt settles the auction first, so closing the
// auction never strictly requires a dedicated Finalize call.
func (a *Auction) Withdraw(caller Identity) error {
	if !a.finalized && a.highestBidder != NoIdentity && !a.now().Before(a.deadline) {
		if err := a.settle(); err != nil {
			return err
		}
	}
	if !a.finalized {
		return ErrNotFinalized
	}
	if caller == a.winner {
		return ErrWinnerCannotWithdraw
	}

	amount := a.bids[caller]
	if !amount.IsPositive() {
		return ErrNothingToWithdraw
	}

	// Zero before paying: a reentrant withdrawal attempt during the payout
	// sees an empty entry and cannot refund twice.
	a.bids[caller] = decimal.Zero
	if err := a.payments.Pay(caller, amount); err != nil {
		a.bids[caller] = amount
		return fmt.Errorf("refund payout: %w: %w", ErrTransferFailed, err)
	}

	a.events.Emit(Event{
		Kind:   EventWithdrawn,
		Bidder: caller,
		Amount: amount,
		At:     a.now(),
	})
	return nil
}

// Seller returns the identity that initiated the auction and receives the
// winning amount.
func (a *Auction) Seller() Identity { return a.seller }

// Asset returns the reference of the lot under auction.
func (a *Auction) Asset() AssetRef { return a.asset }

// Deadline returns the instant after which no new bids are accepted.
func (a *Auction) Deadline() time.Time { return a.deadline }

// TopBid returns the current leader and leading cumulative amount. The leader
// is NoIdentity before the first valid bid and again after finalization.
func (a *Auction) TopBid() (Identity, decimal.Decimal) {
	return a.highestBidder, a.highestBid
}

// BidOf returns the bidder's cumulative committed amount. Zero for unknown
// bidders and for losers who already withdrew.
func (a *Auction) BidOf(bidder Identity) decimal.Decimal {
	return a.bids[bidder]
}

// Finalized reports whether settlement has executed.
func (a *Auction) Finalized() bool { return a.finalized }

// Winner returns the settled winner and winning amount. NoIdentity and zero
// before finalization.
func (a *Auction) Winner() (Identity, decimal.Decimal) {
	return a.winner, a.winningBid
}
