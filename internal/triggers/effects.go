// Package triggers matches boost events against the user's configured
// trigger rules and assembles the client-side (MIDI, sound) and
// server-side (webhook, OSC) effects each match fires.
package triggers

import "github.com/Podcastindex-org/helipad-sub000/internal/boost"

// MidiEffect is a client-side instruction to play a MIDI note.
type MidiEffect struct {
	Note     uint8  `json:"note"`
	Velocity uint8  `json:"velocity"`
	Channel  uint8  `json:"channel"`
	Duration uint16 `json:"duration"`
}

// SoundEffect is a client-side instruction to play a sound file.
type SoundEffect struct {
	SoundFile string `json:"sound_file"`
	SoundName string `json:"sound_name"`
}

// ClientEffect bundles the client-side effects one matching trigger fires.
type ClientEffect struct {
	MIDI  *MidiEffect  `json:"midi,omitempty"`
	Sound *SoundEffect `json:"sound,omitempty"`
}

// WebhookEffect is a server-side instruction to POST the boost to a URL.
type WebhookEffect struct {
	Index uint64 `json:"index"`
	URL   string `json:"url"`
	Token string `json:"token"`
}

// OSCEffect is a server-side instruction to send a UDP OSC message.
type OSCEffect struct {
	Index   uint64 `json:"index"`
	Address string `json:"address"`
	Port    uint16 `json:"port"`
	Path    string `json:"path"`
	Args    string `json:"args"`
}

// ServerEffect bundles the server-side effects one matching trigger fires.
type ServerEffect struct {
	Webhook *WebhookEffect
	OSC     *OSCEffect
}

// BoostWithEffects is a boost record alongside the effects its matching
// triggers produced, the shape broadcast over the WebSocket and returned
// from the boost-listing HTTP endpoints.
type BoostWithEffects struct {
	*boost.Record
	Effects []ClientEffect `json:"effects"`

	// ServerEffects drive webhook/OSC dispatch; never sent to clients.
	ServerEffects []ServerEffect `json:"-"`
}

// WebhookPayload is the JSON body POSTed to a trigger's webhook URL.
type WebhookPayload struct {
	Direction string `json:"direction"`
	*boost.Record
}
