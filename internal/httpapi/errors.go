package httpapi

import "errors"

var (
	errNoLightningClient       = errors.New("httpapi: no lightning client configured for outgoing boosts")
	errInvalidSendBoostRequest = errors.New("httpapi: address and a positive sats value are required")
)
