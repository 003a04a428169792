package triggers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"go.uber.org/zap"

	"github.com/Podcastindex-org/helipad-sub000/pkg/logger"
)

const appVersion = "dev"

// effectSender owns the outbound HTTP client webhook effects share.
type effectSender struct {
	httpClient *http.Client
}

func newEffectSender() *effectSender {
	return &effectSender{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
	}
}

// sendWebhook POSTs the boost payload to wh.URL and reports whether the
// request succeeded (HTTP 200).
func (s *effectSender) sendWebhook(ctx context.Context, wh *WebhookEffect, bwe *BoostWithEffects) bool {
	direction := "incoming"
	if bwe.Record.PaymentInfo != nil {
		direction = "outgoing"
	}

	payload := WebhookPayload{Direction: direction, Record: bwe.Record}
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		logger.Warn("encode webhook payload", zap.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		logger.Warn("build webhook request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("Helipad/%s", appVersion))
	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Warn("send webhook", zap.String("url", wh.URL), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("webhook returned non-200", zap.String("url", wh.URL), zap.Int("status", resp.StatusCode))
		return false
	}
	return true
}

// sendOSC encodes effect's path/args as an OSC message and sends it as a
// single UDP datagram to address:port.
func (s *effectSender) sendOSC(effect *OSCEffect) bool {
	msg := osc.NewMessage(effect.Path)
	if effect.Args != "" {
		for _, arg := range parseOSCArgs(effect.Args) {
			msg.Append(arg)
		}
	} else {
		msg.Append(int32(1))
	}

	client := osc.NewClient(effect.Address, int(effect.Port))
	if err := client.Send(msg); err != nil {
		logger.Warn("send osc message", zap.String("address", effect.Address), zap.Error(err))
		return false
	}
	return true
}

// parseOSCArgs coerces a comma-separated argument string into typed OSC
// values: int, then float, then bool, falling back to a quote-trimmed
// string.
func parseOSCArgs(args string) []any {
	parts := strings.Split(args, ",")
	out := make([]any, 0, len(parts))
	for _, raw := range parts {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}

		if i, err := strconv.ParseInt(v, 10, 32); err == nil {
			out = append(out, int32(i))
			continue
		}
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			out = append(out, float32(f))
			continue
		}
		if strings.EqualFold(v, "true") || strings.EqualFold(v, "t") {
			out = append(out, true)
			continue
		}
		if strings.EqualFold(v, "false") || strings.EqualFold(v, "f") {
			out = append(out, false)
			continue
		}

		out = append(out, strings.Trim(strings.Trim(v, `"`), "'"))
	}
	return out
}
