// Package auctionapi defines the JSON envelopes spoken on the auctiond
// request socket. Every request carries a type discriminator; amounts travel
// as decimal strings.
package auctionapi

import "time"

// Request type discriminators.
const (
	TypePing     = "ping"
	TypePlaceBid = "place_bid"
	TypeSetBid   = "set_bid"
	TypeFinalize = "finalize"
	TypeWithdraw = "withdraw"
	TypeStatus   = "status"
	TypeBidOf    = "bid_of"
)

// BaseRequest is decoded first to pick the handler.
type BaseRequest struct {
	Type string `json:"type"`
}

// PlaceBidRequest raises the bidder's cumulative total by Amount.
type PlaceBidRequest struct {
	Type   string `json:"type"`
	Bidder string `json:"bidder"`
	Amount string `json:"amount"`
}

// SetBidRequest raises the bidder's cumulative total to exactly Target.
// Amount must equal the difference between Target and the current total.
type SetBidRequest struct {
	Type   string `json:"type"`
	Bidder string `json:"bidder"`
	Target string `json:"target"`
	Amount string `json:"amount"`
}

// WithdrawRequest refunds the bidder's committed amount after finalization.
type WithdrawRequest struct {
	Type   string `json:"type"`
	Bidder string `json:"bidder"`
}

// BidOfRequest queries one bidder's cumulative committed amount.
type BidOfRequest struct {
	Type   string `json:"type"`
	Bidder string `json:"bidder"`
}

// Status is the queryable state surface of the auction.
type Status struct {
	Seller     string    `json:"seller"`
	Registry   string    `json:"registry"`
	TokenID    string    `json:"token_id"`
	Deadline   time.Time `json:"deadline"`
	TopBidder  string    `json:"top_bidder,omitempty"`
	TopBid     string    `json:"top_bid"`
	Finalized  bool      `json:"finalized"`
	Winner     string    `json:"winner,omitempty"`
	WinningBid string    `json:"winning_bid,omitempty"`
}

// Response is the uniform reply envelope. Bid is set for bid_of replies.
type Response struct {
	Type    string  `json:"type"`
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	Status  *Status `json:"status,omitempty"`
	Bid     string  `json:"bid,omitempty"`
}
