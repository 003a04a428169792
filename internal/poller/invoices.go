package poller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Podcastindex-org/helipad-sub000/internal/boost"
	"github.com/Podcastindex-org/helipad-sub000/internal/lnclient"
	"github.com/Podcastindex-org/helipad-sub000/pkg/logger"
)

// runInvoiceLoop drains every settled invoice the node already knows about
// (catchup, no trigger effects fired), then subscribes for new ones in
// real time, firing trigger effects on each. A subscription that ends
// after delivering at least one invoice is treated as a mid-stream
// disconnect and retried quickly; one that ends without ever delivering an
// invoice is treated as a failed initial connect and retried slowly.
func (p *Poller) runInvoiceLoop(ctx context.Context) {
	last, err := p.store.LastBoostIndex(ctx)
	if err != nil {
		logger.Warn("poller: load last boost index", zap.Error(err))
	}

	last = p.catchUpInvoices(ctx, last)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		delivered, streamErr := p.subscribeInvoicesOnce(ctx, &last)
		if ctx.Err() != nil {
			return
		}

		backoff := p.cfg.ReconnectBackoff
		if delivered {
			backoff = p.cfg.SubscriberBackoff
		}
		if streamErr != nil {
			logger.Warn("poller: invoice subscription ended", zap.Error(streamErr), zap.Duration("retry_in", backoff))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

// catchUpInvoices pages through every settled invoice past last, persisting
// each without running trigger effects, and returns the new high-water
// mark.
func (p *Poller) catchUpInvoices(ctx context.Context, last uint64) uint64 {
	for {
		invoices, err := p.client.ListInvoices(ctx, last, p.cfg.PageSize)
		if err != nil {
			logger.Warn("poller: list invoices (catchup)", zap.Error(err))
			return last
		}
		if len(invoices) == 0 {
			return last
		}

		for _, inv := range invoices {
			last = maxU64(last, inv.AddIndex)
			p.parseAndHandleInvoice(ctx, inv, true)
		}
	}
}

// subscribeInvoicesOnce opens a single subscription starting after last,
// processing every delivered invoice with trigger effects enabled, and
// reports whether at least one invoice was delivered before the stream
// ended.
func (p *Poller) subscribeInvoicesOnce(ctx context.Context, last *uint64) (delivered bool, err error) {
	invCh, errCh := p.client.SubscribeInvoices(ctx, *last)

	for {
		select {
		case <-ctx.Done():
			return delivered, nil

		case inv, ok := <-invCh:
			if !ok {
				invCh = nil
				continue
			}
			delivered = true
			*last = maxU64(*last, inv.AddIndex)
			p.parseAndHandleInvoice(ctx, inv, false)

		case streamErr, ok := <-errCh:
			if !ok {
				return delivered, nil
			}
			return delivered, streamErr
		}
	}
}

// parseAndHandleInvoice parses inv into a boost record -- consulting the
// current settings for whether comment-based metadata enrichment is
// enabled -- and, if it produced one, hands it to handleBoost.
func (p *Poller) parseAndHandleInvoice(ctx context.Context, inv lnclient.Invoice, catchup bool) {
	settings, err := p.store.LoadSettings(ctx)
	if err != nil {
		logger.Warn("poller: load settings", zap.Error(err))
	}

	rec, err := boost.ParseFromInvoice(ctx, inv, p.resolver, p.fetcher, settings.FetchMetadata)
	if err != nil {
		logger.Warn("poller: parse invoice", zap.Uint64("add_index", inv.AddIndex), zap.Error(err))
		return
	}
	if rec == nil {
		return
	}
	p.handleBoost(ctx, rec, catchup)
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
