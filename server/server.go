// Package server exposes one auction over a one-shot-request TCP socket:
// a client connects, writes a single JSON request, and reads back a single
// JSON response.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cloudx-io/openlot/auctionapi"
	"github.com/cloudx-io/openlot/core"
)

const readTimeout = 30 * time.Second

// Server serializes every engine operation behind one mutex, providing the
// per-auction transactional boundary the engine's contract requires.
type Server struct {
	addr       string
	maxWorkers int
	logger     zerolog.Logger

	mu      sync.Mutex
	auction *core.Auction
}

func New(addr string, maxWorkers int, auction *core.Auction, logger zerolog.Logger) *Server {
	return &Server{
		addr:       addr,
		maxWorkers: maxWorkers,
		logger:     logger,
		auction:    auction,
	}
}

// Start listens on the configured address and serves until the listener
// fails. Connections beyond the worker budget are rejected immediately.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	defer func() {
		if err := listener.Close(); err != nil {
			s.logger.Error().Err(err).Msg("close listener")
		}
	}()

	s.logger.Info().
		Str("addr", listener.Addr().String()).
		Int("max_workers", s.maxWorkers).
		Msg("auction server listening")

	semaphore := make(chan struct{}, s.maxWorkers)
	for {
		conn, err := listener.Accept()
		if err != nil {
			s.logger.Error().Err(err).Msg("accept connection")
			continue
		}

		select {
		case semaphore <- struct{}{}:
			go func(c net.Conn) {
				defer func() { <-semaphore }()
				s.handleConnection(c)
			}(conn)
		default:
			s.logger.Info().Msg("no workers available, rejecting connection")
			if err := conn.Close(); err != nil {
				s.logger.Error().Err(err).Msg("close rejected connection")
			}
		}
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("panic recovered in connection handler")
		}
		if err := conn.Close(); err != nil {
			s.logger.Error().Err(err).Msg("close connection")
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, conn); err != nil {
		s.logger.Error().Err(err).Msg("read request")
		return
	}

	response := s.handleRequest(buf.Bytes())
	if err := json.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) handleRequest(raw []byte) auctionapi.Response {
	var base auctionapi.BaseRequest
	if err := json.Unmarshal(raw, &base); err != nil {
		return errResponse("error", fmt.Sprintf("decode request: %v", err))
	}

	s.logger.Info().Str("type", base.Type).Msg("request received")

	switch base.Type {
	case auctionapi.TypePing:
		return auctionapi.Response{Type: "pong", Success: true}

	case auctionapi.TypePlaceBid:
		var req auctionapi.PlaceBidRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return errResponse(base.Type, fmt.Sprintf("decode place_bid request: %v", err))
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return errResponse(base.Type, fmt.Sprintf("parse amount: %v", err))
		}
		s.mu.Lock()
		err = s.auction.PlaceBid(core.Identity(req.Bidder), amount)
		s.mu.Unlock()
		if err != nil {
			return errResponse(base.Type, err.Error())
		}
		return auctionapi.Response{Type: base.Type, Success: true}

	case auctionapi.TypeSetBid:
		var req auctionapi.SetBidRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return errResponse(base.Type, fmt.Sprintf("decode set_bid request: %v", err))
		}
		target, err := decimal.NewFromString(req.Target)
		if err != nil {
			return errResponse(base.Type, fmt.Sprintf("parse target: %v", err))
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return errResponse(base.Type, fmt.Sprintf("parse amount: %v", err))
		}
		s.mu.Lock()
		err = s.auction.SetBidTo(core.Identity(req.Bidder), target, amount)
		s.mu.Unlock()
		if err != nil {
			return errResponse(base.Type, err.Error())
		}
		return auctionapi.Response{Type: base.Type, Success: true}

	case auctionapi.TypeFinalize:
		s.mu.Lock()
		err := s.auction.Finalize()
		s.mu.Unlock()
		if err != nil {
			return errResponse(base.Type, err.Error())
		}
		return auctionapi.Response{Type: base.Type, Success: true}

	case auctionapi.TypeWithdraw:
		var req auctionapi.WithdrawRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return errResponse(base.Type, fmt.Sprintf("decode withdraw request: %v", err))
		}
		s.mu.Lock()
		err := s.auction.Withdraw(core.Identity(req.Bidder))
		s.mu.Unlock()
		if err != nil {
			return errResponse(base.Type, err.Error())
		}
		return auctionapi.Response{Type: base.Type, Success: true}

	case auctionapi.TypeStatus:
		s.mu.Lock()
		status := s.status()
		s.mu.Unlock()
		return auctionapi.Response{Type: base.Type, Success: true, Status: &status}

	case auctionapi.TypeBidOf:
		var req auctionapi.BidOfRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return errResponse(base.Type, fmt.Sprintf("decode bid_of request: %v", err))
		}
		s.mu.Lock()
		amount := s.auction.BidOf(core.Identity(req.Bidder))
		s.mu.Unlock()
		return auctionapi.Response{Type: base.Type, Success: true, Bid: amount.String()}

	default:
		return errResponse("error", fmt.Sprintf("unknown request type: %q", base.Type))
	}
}

// status reads the queryable state surface. Caller holds s.mu.
func (s *Server) status() auctionapi.Status {
	asset := s.auction.Asset()
	topBidder, topBid := s.auction.TopBid()
	winner, winningBid := s.auction.Winner()

	status := auctionapi.Status{
		Seller:    string(s.auction.Seller()),
		Registry:  asset.Registry,
		TokenID:   asset.TokenID.String(),
		Deadline:  s.auction.Deadline(),
		TopBidder: string(topBidder),
		TopBid:    topBid.String(),
		Finalized: s.auction.Finalized(),
	}
	if winner != core.NoIdentity {
		status.Winner = string(winner)
		status.WinningBid = winningBid.String()
	}
	return status
}

func errResponse(typ, message string) auctionapi.Response {
	return auctionapi.Response{Type: typ, Success: false, Message: message}
}
