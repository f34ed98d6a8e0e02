// File: internal/marketplace/client.go
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"marketplace_onboarding/internal/config"
	"marketplace_onboarding/internal/metrics"
	"marketplace_onboarding/internal/platform/logger"

	"go.uber.org/zap"
)

const (
	opRegister      = "register"
	opUpload        = "upload"
	opSellerProfile = "create_seller_profile"
	opBuyerProfile  = "create_buyer_profile"

	// uploadField is the multipart field the upload endpoint reads files from.
	uploadField = "images"
	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 1 << 20
)

// Client calls the marketplace REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for MARKETPLACE_API_URL.
func NewClient(cfg *config.Config, log *zap.Logger) *Client {
	timeout := cfg.MarketplaceAPITimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.MarketplaceAPIURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.Named("MarketplaceClient"),
	}
}

// Register creates a user account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisteredUser, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal register request: %w", err)
	}
	log := logger.FromContext(ctx, c.logger).With(zap.String("email", req.Email), zap.String("role", req.Role))

	respBody, err := c.do(ctx, log, opRegister, http.MethodPost, "/auth/register", "", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	user, err := decodeRegisteredUser(respBody)
	if err != nil {
		log.Error("Failed decoding register response", zap.Error(err))
		return nil, err
	}
	log.Info("User registered", zap.String("user_id", user.ID), zap.Bool("pending_verification", user.PendingVerification()))
	return user, nil
}

// UploadFiles uploads all files in one multipart call and returns their URLs in the same order.
func (c *Client) UploadFiles(ctx context.Context, files []File) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	log := logger.FromContext(ctx, c.logger).With(zap.Int("files", len(files)))

	payload, contentType, err := buildMultipart(files)
	if err != nil {
		log.Error("Failed building upload body", zap.Error(err))
		return nil, err
	}

	respBody, err := c.do(ctx, log, opUpload, http.MethodPost, "/upload/multiple", "", contentType, payload)
	if err != nil {
		return nil, err
	}
	urls, err := decodeUploadedURLs(respBody)
	if err != nil {
		log.Error("Failed decoding upload response", zap.Error(err))
		return nil, err
	}
	if len(urls) < len(files) {
		err := fmt.Errorf("%w: upload returned %d urls for %d files", ErrUnexpectedResponse, len(urls), len(files))
		log.Error("Upload response is short", zap.Error(err))
		return nil, err
	}
	log.Info("Files uploaded", zap.Strings("urls", urls[:len(files)]))
	return urls[:len(files)], nil
}

// CreateSellerProfile creates the seller profile of the user identified by token.
func (c *Client) CreateSellerProfile(ctx context.Context, token string, req SellerProfileRequest) error {
	return c.createProfile(ctx, opSellerProfile, "/seller", token, req.CompanyName, req)
}

// CreateBuyerProfile creates the buyer profile of the user identified by token.
func (c *Client) CreateBuyerProfile(ctx context.Context, token string, req BuyerProfileRequest) error {
	return c.createProfile(ctx, opBuyerProfile, "/buyer", token, req.CompanyName, req)
}

func (c *Client) createProfile(ctx context.Context, op, path, token, company string, req interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", op, err)
	}
	log := logger.FromContext(ctx, c.logger).With(zap.String("company_name", company), zap.Bool("authenticated", token != ""))

	if _, err := c.do(ctx, log, op, http.MethodPost, path, token, "application/json", bytes.NewReader(body)); err != nil {
		return err
	}
	log.Info("Profile created", zap.String("operation", op))
	return nil
}

func (c *Client) do(ctx context.Context, log *zap.Logger, op, method, path, token, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		log.Error("Failed creating request", zap.String("operation", op), zap.Error(err))
		return nil, fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if reqID := logger.RequestIDFrom(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveMarketplaceCall(op, 0, time.Since(start))
		log.Error("Marketplace request failed", zap.String("operation", op), zap.Error(err))
		return nil, &TransportError{Operation: op, Err: err}
	}
	defer resp.Body.Close()
	metrics.ObserveMarketplaceCall(op, resp.StatusCode, time.Since(start))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Error("Failed to read response body", zap.String("operation", op), zap.Error(err))
		return nil, &TransportError{Operation: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upErr := newUpstreamError(op, resp.StatusCode, respBody)
		log.Warn("Marketplace returned non-success status",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", upErr.Message),
		)
		return nil, upErr
	}
	return respBody, nil
}

func buildMultipart(files []File) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for i, f := range files {
		if f.Open == nil {
			return nil, "", fmt.Errorf("file %d (%s) has no content", i, f.Name)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, uploadField, escapeQuotes(f.Name)))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part for %s: %w", f.Name, err)
		}
		src, err := f.Open()
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", f.Name, err)
		}
		_, err = io.Copy(part, src)
		src.Close()
		if err != nil {
			return nil, "", fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// IsTransport reports whether err means the API was never reached or never answered.
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}
