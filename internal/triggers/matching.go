package triggers

import (
	"strconv"
	"strings"

	"github.com/Podcastindex-org/helipad-sub000/internal/boost"
	"github.com/Podcastindex-org/helipad-sub000/internal/store"
)

// matchesOnCondition reports whether trigger's direction/type flags admit
// rec: sent-payment boosts only match triggers with OnSent, and rec's
// action type must have its corresponding OnStream/OnBoost/OnAuto/OnInvoice
// flag set.
func matchesOnCondition(trigger *store.Trigger, rec *boost.Record) bool {
	if rec.PaymentInfo != nil && !trigger.OnSent {
		return false
	}
	switch rec.Action.Name() {
	case "stream":
		return trigger.OnStream
	case "boost":
		return trigger.OnBoost
	case "auto":
		return trigger.OnAuto
	case "invoice":
		return trigger.OnInvoice
	default:
		return true
	}
}

// matchesFilters reports whether rec satisfies every configured predicate
// on trigger (amount, sender, app, podcast); an unset predicate always
// passes.
func matchesFilters(trigger *store.Trigger, rec *boost.Record) bool {
	sats := rec.Sats()
	if sats < 0 {
		sats = 0
	}

	return matchesNumeric(trigger.AmountEquality, trigger.Amount, uint64(sats)) &&
		matchesString(trigger.SenderEquality, trigger.Sender, rec.Sender) &&
		matchesString(trigger.AppEquality, trigger.App, rec.App) &&
		matchesString(trigger.PodcastEquality, trigger.Podcast, rec.Podcast)
}

func matchesNumeric(equality *string, filterValue *uint64, actual uint64) bool {
	if equality == nil || filterValue == nil {
		return true
	}
	switch *equality {
	case ">=":
		return actual >= *filterValue
	case "<":
		return actual < *filterValue
	case "=":
		return actual == *filterValue
	case "!=":
		return actual != *filterValue
	case "=~":
		return strings.Contains(strconv.FormatUint(actual, 10), strconv.FormatUint(*filterValue, 10))
	case "^=":
		return strings.HasPrefix(strconv.FormatUint(actual, 10), strconv.FormatUint(*filterValue, 10))
	case "$=":
		return strings.HasSuffix(strconv.FormatUint(actual, 10), strconv.FormatUint(*filterValue, 10))
	default:
		return false
	}
}

func matchesString(equality *string, filterValue *string, actual string) bool {
	if equality == nil || filterValue == nil {
		return true
	}
	switch *equality {
	case ">=":
		return actual >= *filterValue
	case "<":
		return actual < *filterValue
	case "=":
		return actual == *filterValue
	case "!=":
		return actual != *filterValue
	case "=~":
		return strings.Contains(actual, *filterValue)
	case "^=":
		return strings.HasPrefix(actual, *filterValue)
	case "$=":
		return strings.HasSuffix(actual, *filterValue)
	default:
		return false
	}
}

// clientEffect builds trigger's MIDI/sound client effect, or nil if
// trigger configures neither.
func clientEffect(trigger *store.Trigger) *ClientEffect {
	var midi *MidiEffect
	if trigger.MIDINote != nil {
		midi = &MidiEffect{
			Note:     *trigger.MIDINote,
			Velocity: derefU8(trigger.MIDIVelocity, 100),
			Channel:  derefU8(trigger.MIDIChannel, 1),
			Duration: derefU16(trigger.MIDIDuration, 500),
		}
	}

	var sound *SoundEffect
	if trigger.SoundFile != nil {
		sound = &SoundEffect{
			SoundFile: "sound/" + *trigger.SoundFile,
			SoundName: *trigger.SoundFile,
		}
	}

	if midi == nil && sound == nil {
		return nil
	}
	return &ClientEffect{MIDI: midi, Sound: sound}
}

// serverEffect builds trigger's webhook/OSC server effect, or nil if
// trigger configures neither.
func serverEffect(trigger *store.Trigger) *ServerEffect {
	var webhook *WebhookEffect
	if trigger.WebhookURL != nil {
		webhook = &WebhookEffect{
			Index: trigger.Index,
			URL:   *trigger.WebhookURL,
			Token: derefStr(trigger.WebhookToken, ""),
		}
	}

	var osc *OSCEffect
	if trigger.OSCAddress != nil && trigger.OSCPort != nil && trigger.OSCPath != nil {
		osc = &OSCEffect{
			Index:   trigger.Index,
			Address: *trigger.OSCAddress,
			Port:    *trigger.OSCPort,
			Path:    *trigger.OSCPath,
			Args:    derefStr(trigger.OSCArgs, ""),
		}
	}

	if webhook == nil && osc == nil {
		return nil
	}
	return &ServerEffect{Webhook: webhook, OSC: osc}
}

func derefU8(p *uint8, def uint8) uint8 {
	if p == nil {
		return def
	}
	return *p
}

func derefU16(p *uint16, def uint16) uint16 {
	if p == nil {
		return def
	}
	return *p
}

func derefStr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
