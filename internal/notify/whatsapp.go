package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/OG2511/maccabi-stickers-shop/internal/logger"
	"github.com/OG2511/maccabi-stickers-shop/internal/utils"

	"go.uber.org/zap"
)

const callMeBotBaseURL = "https://api.callmebot.com"

const maxSendAttempts = 3

// WhatsAppSender delivers a free-text message to a single phone
// number.
type WhatsAppSender interface {
	Send(ctx context.Context, text string) error
}

type whatsAppGateway struct {
	baseURL    string
	phone      string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewWhatsAppGateway builds a CallMeBot-backed sender. The bot only
// supports pre-registered numbers, so phone and apiKey come as a pair.
func NewWhatsAppGateway(phone, apiKey string) WhatsAppSender {
	if apiKey == "" {
		logger.L().Warn("CallMeBot API key is empty, WhatsApp delivery will fail")
	}

	return &whatsAppGateway{
		baseURL: callMeBotBaseURL,
		phone:   utils.NormalizePhoneIL(phone),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		backoff: 2 * time.Second,
	}
}

// Send tries up to three times with a linear backoff. CallMeBot rate
// limits aggressively, so transient failures are common.
func (g *whatsAppGateway) Send(ctx context.Context, text string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("method", "Send"),
	)

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		lastErr = g.sendOnce(ctx, text)
		if lastErr == nil {
			log.Debug("whatsapp message delivered", zap.Int("attempt", attempt))
			return nil
		}

		log.Warn("whatsapp send attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)

		if attempt < maxSendAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(g.backoff * time.Duration(attempt)):
			}
		}
	}

	return fmt.Errorf("whatsapp delivery failed after %d attempts: %w", maxSendAttempts, lastErr)
}

func (g *whatsAppGateway) sendOnce(ctx context.Context, text string) error {
	params := url.Values{}
	params.Set("phone", g.phone)
	params.Set("text", text)
	params.Set("apikey", g.apiKey)

	endpoint := g.baseURL + "/whatsapp.php?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("callmebot returned status %d", resp.StatusCode)
	}
	return nil
}
