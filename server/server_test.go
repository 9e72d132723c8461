package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/peterldowns/testy/check"
	"github.com/rs/zerolog"

	"github.com/cloudx-io/openlot/auctionapi"
	"github.com/cloudx-io/openlot/core"
	"github.com/cloudx-io/openlot/funds"
	"github.com/cloudx-io/openlot/registry"
)

type testHarness struct {
	server *Server
	bank   *funds.Bank
	reg    *registry.Registry
	asset  core.AssetRef
	now    time.Time
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	h := &testHarness{
		reg:  registry.New("lots"),
		bank: funds.NewBank(),
		now:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	h.asset = h.reg.Mint("seller")

	auction, err := core.NewAuction(core.Config{
		Seller:   "seller",
		Asset:    h.asset,
		Deadline: h.now.Add(24 * time.Hour),
		Registry: h.reg,
		Payments: h.bank,
		Now:      func() time.Time { return h.now },
	})
	if err != nil {
		t.Fatalf("NewAuction: %v", err)
	}
	h.server = New(":0", 1, auction, zerolog.Nop())
	return h
}

func (h *testHarness) request(t *testing.T, req any) auctionapi.Response {
	t.Helper()
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return h.server.handleRequest(raw)
}

func TestHandleRequest_Ping(t *testing.T) {
	h := newTestHarness(t)

	resp := h.request(t, auctionapi.BaseRequest{Type: auctionapi.TypePing})
	check.True(t, resp.Success)
	check.Equal(t, "pong", resp.Type)
}

func TestHandleRequest_PlaceBidAndStatus(t *testing.T) {
	h := newTestHarness(t)

	resp := h.request(t, auctionapi.PlaceBidRequest{
		Type: auctionapi.TypePlaceBid, Bidder: "alice", Amount: "5",
	})
	check.True(t, resp.Success)

	resp = h.request(t, auctionapi.BaseRequest{Type: auctionapi.TypeStatus})
	check.True(t, resp.Success)
	check.NotNil(t, resp.Status)
	check.Equal(t, "alice", resp.Status.TopBidder)
	check.Equal(t, "5", resp.Status.TopBid)
	check.False(t, resp.Status.Finalized)
}

func TestHandleRequest_SetBid(t *testing.T) {
	h := newTestHarness(t)

	resp := h.request(t, auctionapi.PlaceBidRequest{
		Type: auctionapi.TypePlaceBid, Bidder: "alice", Amount: "4",
	})
	check.True(t, resp.Success)

	// Wrong delta is rejected; exact delta is accepted.
	resp = h.request(t, auctionapi.SetBidRequest{
		Type: auctionapi.TypeSetBid, Bidder: "alice", Target: "10", Amount: "5",
	})
	check.False(t, resp.Success)

	resp = h.request(t, auctionapi.SetBidRequest{
		Type: auctionapi.TypeSetBid, Bidder: "alice", Target: "10", Amount: "6",
	})
	check.True(t, resp.Success)
}

func TestHandleRequest_FinalizeAndWithdraw(t *testing.T) {
	h := newTestHarness(t)

	check.True(t, h.request(t, auctionapi.PlaceBidRequest{
		Type: auctionapi.TypePlaceBid, Bidder: "alice", Amount: "3",
	}).Success)
	check.True(t, h.request(t, auctionapi.PlaceBidRequest{
		Type: auctionapi.TypePlaceBid, Bidder: "bob", Amount: "4",
	}).Success)

	// Too early.
	resp := h.request(t, auctionapi.BaseRequest{Type: auctionapi.TypeFinalize})
	check.False(t, resp.Success)

	h.now = h.now.Add(25 * time.Hour)
	resp = h.request(t, auctionapi.BaseRequest{Type: auctionapi.TypeFinalize})
	check.True(t, resp.Success)

	owner, err := h.reg.OwnerOf(h.asset)
	check.Nil(t, err)
	check.Equal(t, core.Identity("bob"), owner)

	resp = h.request(t, auctionapi.WithdrawRequest{Type: auctionapi.TypeWithdraw, Bidder: "alice"})
	check.True(t, resp.Success)
	check.True(t, h.bank.BalanceOf("alice").String() == "3")

	resp = h.request(t, auctionapi.WithdrawRequest{Type: auctionapi.TypeWithdraw, Bidder: "bob"})
	check.False(t, resp.Success)

	status := h.request(t, auctionapi.BaseRequest{Type: auctionapi.TypeStatus}).Status
	check.NotNil(t, status)
	check.True(t, status.Finalized)
	check.Equal(t, "bob", status.Winner)
	check.Equal(t, "4", status.WinningBid)
}

func TestHandleRequest_BidOf(t *testing.T) {
	h := newTestHarness(t)

	check.True(t, h.request(t, auctionapi.PlaceBidRequest{
		Type: auctionapi.TypePlaceBid, Bidder: "alice", Amount: "2",
	}).Success)
	check.True(t, h.request(t, auctionapi.PlaceBidRequest{
		Type: auctionapi.TypePlaceBid, Bidder: "alice", Amount: "3",
	}).Success)

	resp := h.request(t, auctionapi.BidOfRequest{Type: auctionapi.TypeBidOf, Bidder: "alice"})
	check.True(t, resp.Success)
	check.Equal(t, "5", resp.Bid)

	// Unknown bidders report zero committed value.
	resp = h.request(t, auctionapi.BidOfRequest{Type: auctionapi.TypeBidOf, Bidder: "nobody"})
	check.True(t, resp.Success)
	check.Equal(t, "0", resp.Bid)
}

func TestHandleRequest_BadInput(t *testing.T) {
	h := newTestHarness(t)

	resp := h.server.handleRequest([]byte("not json"))
	check.False(t, resp.Success)

	resp = h.request(t, auctionapi.BaseRequest{Type: "mystery"})
	check.False(t, resp.Success)

	resp = h.request(t, auctionapi.PlaceBidRequest{
		Type: auctionapi.TypePlaceBid, Bidder: "alice", Amount: "not-a-number",
	})
	check.False(t, resp.Success)
}
