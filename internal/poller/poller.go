// Package poller drives the node-facing side of helipad: it periodically
// refreshes node identity and wallet balance, subscribes to settled
// invoices in real time, and polls sent payments, feeding every resulting
// boost record through the trigger engine and out over the event bus.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Podcastindex-org/helipad-sub000/internal/boost"
	"github.com/Podcastindex-org/helipad-sub000/internal/eventbus"
	"github.com/Podcastindex-org/helipad-sub000/internal/lnclient"
	"github.com/Podcastindex-org/helipad-sub000/internal/store"
	"github.com/Podcastindex-org/helipad-sub000/internal/triggers"
	"github.com/Podcastindex-org/helipad-sub000/pkg/logger"
)

// Config tunes the poller's various loop intervals and backoffs.
type Config struct {
	BalanceInterval   time.Duration
	SubscriberBackoff time.Duration
	ReconnectBackoff  time.Duration
	PageSize          uint64
}

func (c Config) withDefaults() Config {
	if c.BalanceInterval <= 0 {
		c.BalanceInterval = 9 * time.Second
	}
	if c.SubscriberBackoff <= 0 {
		c.SubscriberBackoff = 5 * time.Second
	}
	if c.ReconnectBackoff <= 0 {
		c.ReconnectBackoff = 60 * time.Second
	}
	if c.PageSize == 0 {
		c.PageSize = 500
	}
	return c
}

// Poller owns the background goroutines that keep the store, trigger
// engine and WebSocket event bus in sync with the connected Lightning
// node.
type Poller struct {
	client  lnclient.Client
	store   *store.Store
	engine  *triggers.Engine
	bus     *eventbus.Bus
	resolver boost.GuidResolver
	fetcher  boost.MetadataFetcher
	cfg      Config
}

// New builds a Poller. resolver/fetcher may be nil to disable remote-GUID
// resolution / comment-metadata enrichment respectively.
func New(client lnclient.Client, st *store.Store, engine *triggers.Engine, bus *eventbus.Bus, resolver boost.GuidResolver, fetcher boost.MetadataFetcher, cfg Config) *Poller {
	return &Poller{
		client:   client,
		store:    st,
		engine:   engine,
		bus:      bus,
		resolver: resolver,
		fetcher:  fetcher,
		cfg:      cfg.withDefaults(),
	}
}

// Run starts every background loop and blocks until ctx is canceled.
func (p *Poller) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		p.runNodeInfoLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		p.runInvoiceLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		p.runPaymentLoop(ctx)
	}()

	wg.Wait()
}

// runNodeInfoLoop refreshes node identity + wallet balance on a fixed
// interval, publishing a "balance" event on every successful tick.
// Transport failures are logged and retried on the next tick rather than
// treated as fatal -- the node may be mid-restart.
func (p *Poller) runNodeInfoLoop(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.BalanceInterval)
	defer ticker.Stop()

	for {
		p.pollNodeInfoOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) pollNodeInfoOnce(ctx context.Context) {
	info, err := p.client.GetInfo(ctx)
	if err != nil {
		logger.Warn("poller: get node info", zap.Error(err))
		return
	}

	balance, err := p.client.ChannelBalance(ctx)
	if err != nil {
		logger.Warn("poller: get channel balance", zap.Error(err))
		return
	}

	record := store.NodeInfo{
		Time:          time.Now().Unix(),
		Alias:         info.Alias,
		Pubkey:        info.Pubkey,
		Version:       info.Version,
		WalletBalance: balance,
		NodeType:      info.NodeType,
	}
	if err := p.store.SaveNodeInfo(ctx, record); err != nil {
		logger.Warn("poller: save node info", zap.Error(err))
		return
	}

	p.bus.Publish(eventbus.Event{Kind: "balance", Payload: record})
}

// handleBoost persists rec to the appropriate table and, when catchup is
// false, runs it through the trigger engine and publishes the resulting
// BoostWithEffects. catchup is true only while draining records that
// predate this process's startup, so that replaying history on every
// restart never re-fires webhooks/OSC/sound effects.
func (p *Poller) handleBoost(ctx context.Context, rec *boost.Record, catchup bool) {
	var storeErr error
	kind := "boost"
	if rec.PaymentInfo != nil {
		kind = "payment"
		storeErr = p.store.AddPayment(ctx, rec)
	} else {
		storeErr = p.store.AddInvoice(ctx, rec)
	}
	if storeErr != nil {
		logger.Warn("poller: persist boost", zap.Uint64("index", rec.Index), zap.Error(storeErr))
		return
	}
	if !rec.Action.IsBoostList() && rec.PaymentInfo == nil {
		kind = "stream"
	}

	if catchup {
		return
	}

	bwe, err := p.engine.Process(ctx, rec)
	if err != nil {
		logger.Warn("poller: process triggers", zap.Uint64("index", rec.Index), zap.Error(err))
		bwe = &triggers.BoostWithEffects{Record: rec}
	}
	p.bus.Publish(eventbus.Event{Kind: kind, Payload: bwe})
}
