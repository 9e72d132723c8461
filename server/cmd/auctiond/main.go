// Command auctiond opens one single-lot auction and serves it over TCP.
// The lot is minted to the configured seller at startup and bidding stays
// open for the configured window.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/cloudx-io/openlot/config"
	"github.com/cloudx-io/openlot/core"
	"github.com/cloudx-io/openlot/funds"
	"github.com/cloudx-io/openlot/journal"
	"github.com/cloudx-io/openlot/registry"
	"github.com/cloudx-io/openlot/server"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load configuration")
	}

	jrnl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open journal")
	}
	defer func() {
		if err := jrnl.Close(); err != nil {
			logger.Error().Err(err).Msg("close journal")
		}
	}()

	seller := core.Identity(cfg.Seller)
	reg := registry.New(cfg.LotRegistry)
	lot := reg.Mint(seller)
	deadline := time.Now().Add(cfg.BidWindow)

	auction, err := core.NewAuction(core.Config{
		Seller:   seller,
		Asset:    lot,
		Deadline: deadline,
		Registry: reg,
		Payments: funds.NewBank(),
		Events:   journal.NewSink(jrnl, logger),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("create auction")
	}

	logger.Info().
		Str("seller", cfg.Seller).
		Str("registry", lot.Registry).
		Str("token_id", lot.TokenID.String()).
		Time("deadline", deadline).
		Msg("auction open")

	srv := server.New(cfg.ListenAddr, cfg.MaxWorkers, auction, logger)
	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
