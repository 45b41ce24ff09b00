package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ironsheep/image-brightness/internal/version"
)

// ErrCaptchaFailed is returned when an upload's anti-abuse token is missing
// or rejected by the verification service.
var ErrCaptchaFailed = errors.New("reCAPTCHA verification failed")

// Verifier checks an anti-abuse token before the pipeline runs.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// NopVerifier accepts every request. It is used when no secret is configured.
type NopVerifier struct{}

// Verify always succeeds.
func (NopVerifier) Verify(context.Context, string, string) error {
	return nil
}

// RecaptchaVerifier validates tokens against a reCAPTCHA siteverify endpoint.
type RecaptchaVerifier struct {
	secret    string
	verifyURL string
	client    *http.Client
}

// NewRecaptchaVerifier creates a verifier that posts to verifyURL with the
// given per-request timeout.
func NewRecaptchaVerifier(secret, verifyURL string, timeout time.Duration) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		secret:    secret,
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: timeout},
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts the token to the verification endpoint. A missing token or
// an unsuccessful verdict yields ErrCaptchaFailed; transport failures are
// returned wrapped and are not retried.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if token == "" {
		return fmt.Errorf("%w: missing token", ErrCaptchaFailed)
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "image-brightness/"+version.Version)

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("verification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("verification service returned HTTP %d", resp.StatusCode)
	}

	var body siteverifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode verification response: %w", err)
	}
	if !body.Success {
		if len(body.ErrorCodes) > 0 {
			return fmt.Errorf("%w: %s", ErrCaptchaFailed, strings.Join(body.ErrorCodes, ", "))
		}
		return ErrCaptchaFailed
	}
	return nil
}
