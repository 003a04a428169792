package poller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Podcastindex-org/helipad-sub000/internal/boost"
	"github.com/Podcastindex-org/helipad-sub000/pkg/logger"
)

// runPaymentLoop polls sent payments on the same cadence as the node-info
// refresh, since LND/CLN expose no payment-subscription primitive
// equivalent to invoice settlement notifications. The first pass that
// turns up no new payment is the end of catchup; every pass after that
// fires trigger effects.
func (p *Poller) runPaymentLoop(ctx context.Context) {
	last, err := p.store.LastPaymentIndex(ctx)
	if err != nil {
		logger.Warn("poller: load last payment index", zap.Error(err))
	}

	catchup := true
	ticker := time.NewTicker(p.cfg.BalanceInterval)
	defer ticker.Stop()

	for {
		payments, err := p.client.ListPayments(ctx, last, p.cfg.PageSize)
		if err != nil {
			logger.Warn("poller: list payments", zap.Error(err))
		} else {
			if len(payments) == 0 {
				catchup = false
			}
			for _, pmt := range payments {
				last = maxU64(last, pmt.PaymentIndex)

				rec, err := boost.ParseFromPayment(ctx, pmt, p.resolver)
				if err != nil {
					logger.Warn("poller: parse payment", zap.Uint64("payment_index", pmt.PaymentIndex), zap.Error(err))
					continue
				}
				if rec == nil {
					continue
				}
				p.handleBoost(ctx, rec, catchup)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
