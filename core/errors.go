package core

import "errors"

// Precondition violations. Every failed operation leaves the auction exactly as
// it was before the call.
var (
	ErrAuctionClosed        = errors.New("auction: bidding closed")
	ErrZeroBid              = errors.New("auction: bid amount must be positive")
	ErrBidNotIncreasing     = errors.New("auction: target total does not raise the bid")
	ErrAmountMismatch       = errors.New("auction: supplied amount does not match the delta")
	ErrAuctionStillOpen     = errors.New("auction: bidding still open")
	ErrAlreadyFinalized     = errors.New("auction: already finalized")
	ErrNoBids               = errors.New("auction: no bids placed")
	ErrNotFinalized         = errors.New("auction: not finalized")
	ErrWinnerCannotWithdraw = errors.New("auction: winner cannot withdraw")
	ErrNothingToWithdraw    = errors.New("auction: nothing to withdraw")
	ErrNotAssetOwner        = errors.New("auction: seller does not own the asset")
)

// ErrTransferFailed wraps a collaborator failure during settlement or refund.
// The enclosing operation has already restored its pre-call state and may be
// retried once the collaborator condition clears.
var ErrTransferFailed = errors.New("auction: transfer failed")
