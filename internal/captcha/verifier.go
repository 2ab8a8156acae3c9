package captcha

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/inkwell-labs/bookstore-api/internal/config"
)

// Verifier checks a captcha response token against the reCAPTCHA
// verification endpoint.
type Verifier interface {
	Verify(ctx context.Context, token string) bool
}

type RecaptchaVerifier struct {
	secretKey string
	verifyURL string
	client    *http.Client
	logger    *slog.Logger
}

func NewRecaptchaVerifier(cfg *config.CaptchaConfig, logger *slog.Logger) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		secretKey: cfg.SecretKey,
		verifyURL: cfg.VerifyURL,
		client:    &http.Client{Timeout: cfg.Timeout},
		logger:    logger,
	}
}

type verifyResponse struct {
	Success bool `json:"success"`
}

// Verify returns whether the token passes verification. With no secret
// configured every token passes; all transport and decoding failures are
// treated as a failed verification, never surfaced as errors.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token string) bool {
	if v.secretKey == "" {
		return true
	}

	form := url.Values{}
	form.Set("secret", v.secretKey)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		v.logger.Warn("captcha verification request build failed", slog.Any("error", err))
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("captcha verification request failed", slog.Any("error", err))
		return false
	}
	defer resp.Body.Close()

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		v.logger.Warn("captcha verification response decode failed", slog.Any("error", err))
		return false
	}

	return result.Success
}

var _ Verifier = (*RecaptchaVerifier)(nil)
