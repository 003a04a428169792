package triggers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Podcastindex-org/helipad-sub000/internal/boost"
	"github.com/Podcastindex-org/helipad-sub000/internal/store"
	"github.com/Podcastindex-org/helipad-sub000/pkg/logger"
)

// Engine matches boost records against the persisted trigger set and
// dispatches the server-side effects a match produces.
type Engine struct {
	store  *store.Store
	sender *effectSender
}

// New builds an Engine backed by st.
func New(st *store.Store) *Engine {
	return &Engine{store: st, sender: newEffectSender()}
}

// Process computes the effects rec's matching triggers fire and runs the
// server-side ones (webhook POST, OSC datagram), recording each send's
// outcome back onto its trigger row.
func (e *Engine) Process(ctx context.Context, rec *boost.Record) (*BoostWithEffects, error) {
	bwe, err := e.assemble(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("triggers: assemble effects: %w", err)
	}
	e.runServerEffects(ctx, bwe)
	return bwe, nil
}

// assemble builds a BoostWithEffects for rec without running any
// server-side effect, falling back to the configured default "pew" sound
// when no enabled trigger supplied one.
func (e *Engine) assemble(ctx context.Context, rec *boost.Record) (*BoostWithEffects, error) {
	all, err := e.store.ListTriggers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list triggers: %w", err)
	}

	bwe := &BoostWithEffects{Record: rec}

	for _, t := range all {
		if !t.Enabled || !matchesOnCondition(t, rec) || !matchesFilters(t, rec) {
			continue
		}
		if ce := clientEffect(t); ce != nil {
			bwe.Effects = append(bwe.Effects, *ce)
		}
		if se := serverEffect(t); se != nil {
			bwe.ServerEffects = append(bwe.ServerEffects, *se)
		}
	}

	hasSound := false
	for _, ce := range bwe.Effects {
		if ce.Sound != nil {
			hasSound = true
			break
		}
	}
	if !hasSound {
		if def, err := e.defaultSound(ctx); err == nil && def != nil {
			bwe.Effects = append(bwe.Effects, ClientEffect{Sound: def})
		}
	}

	return bwe, nil
}

func (e *Engine) defaultSound(ctx context.Context) (*SoundEffect, error) {
	settings, err := e.store.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.PlayPew {
		return nil, nil
	}

	soundFile := "pew.mp3"
	if settings.CustomPewFile != nil && *settings.CustomPewFile != "" {
		soundFile = *settings.CustomPewFile
	}
	return &SoundEffect{SoundFile: "sound/" + soundFile, SoundName: soundFile}, nil
}

func (e *Engine) runServerEffects(ctx context.Context, bwe *BoostWithEffects) {
	for _, effect := range bwe.ServerEffects {
		if effect.Webhook != nil {
			e.runWebhook(ctx, effect.Webhook, bwe)
		}
		if effect.OSC != nil {
			e.runOSC(ctx, effect.OSC)
		}
	}
}

func (e *Engine) runWebhook(ctx context.Context, wh *WebhookEffect, bwe *BoostWithEffects) {
	ok := e.sender.sendWebhook(ctx, wh, bwe)
	if err := e.store.SetTriggerWebhookResult(ctx, wh.Index, ok, time.Now().Unix()); err != nil {
		logger.Warn("set trigger webhook result", zap.Error(err))
	}
}

func (e *Engine) runOSC(ctx context.Context, osc *OSCEffect) {
	ok := e.sender.sendOSC(osc)
	if err := e.store.SetTriggerOSCResult(ctx, osc.Index, ok, time.Now().Unix()); err != nil {
		logger.Warn("set trigger osc result", zap.Error(err))
	}
}

// GetBoostsWithEffects maps every rec in recs to its BoostWithEffects,
// without running server-side effects (used by the listing endpoints,
// where triggers have already fired at ingestion time).
func (e *Engine) GetBoostsWithEffects(ctx context.Context, recs []*boost.Record) ([]*BoostWithEffects, error) {
	all, err := e.store.ListTriggers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list triggers: %w", err)
	}
	defaultSound, err := e.defaultSound(ctx)
	if err != nil {
		return nil, fmt.Errorf("default sound: %w", err)
	}

	out := make([]*BoostWithEffects, 0, len(recs))
	for _, rec := range recs {
		bwe := &BoostWithEffects{Record: rec}
		for _, t := range all {
			if !t.Enabled || !matchesOnCondition(t, rec) || !matchesFilters(t, rec) {
				continue
			}
			if ce := clientEffect(t); ce != nil {
				bwe.Effects = append(bwe.Effects, *ce)
			}
			if se := serverEffect(t); se != nil {
				bwe.ServerEffects = append(bwe.ServerEffects, *se)
			}
		}
		hasSound := false
		for _, ce := range bwe.Effects {
			if ce.Sound != nil {
				hasSound = true
			}
		}
		if !hasSound && defaultSound != nil {
			bwe.Effects = append(bwe.Effects, ClientEffect{Sound: defaultSound})
		}
		out = append(out, bwe)
	}
	return out, nil
}

// TestTrigger runs trigger against a synthetic sample boost, firing its
// server-side effects for real so the user can verify a webhook/OSC
// destination from the settings UI.
func (e *Engine) TestTrigger(ctx context.Context, trigger *store.Trigger) (*BoostWithEffects, error) {
	sample := sampleBoostRecord()

	bwe := &BoostWithEffects{Record: sample}
	if ce := clientEffect(trigger); ce != nil {
		bwe.Effects = append(bwe.Effects, *ce)
	}
	if se := serverEffect(trigger); se != nil {
		bwe.ServerEffects = append(bwe.ServerEffects, *se)
	}

	e.runServerEffects(ctx, bwe)
	return bwe, nil
}

func sampleBoostRecord() *boost.Record {
	const testMsats = 100000
	return &boost.Record{
		Index:          99999,
		Time:           time.Now().Unix(),
		ValueMsat:      testMsats,
		ValueMsatTotal: testMsats,
		Action:         boost.ActionBoost,
		Sender:         "Test Sender",
		App:            "Helipad",
		Message:        "This is a test trigger message",
		Podcast:        "Test Podcast",
		Episode:        "Test Episode",
		TLV: fmt.Sprintf(
			`{"action":"boost","app_name":"Helipad","podcast":"Test Podcast","episode":"Test Episode","sender_name":"Test Sender","message":"This is a test trigger message","value_msat":%d,"value_msat_total":%d}`,
			testMsats, testMsats,
		),
	}
}
