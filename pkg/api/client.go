package api

// IMAGE CLIENT

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrImageTooLarge = errors.New("image exceeds size limit")

type Client struct {
	baseURL    string
	httpClient *http.Client
	maxBytes   int64
	logger     *zap.Logger
}

// NewClient builds a client for reference images. Root-relative references
// ("/uploads/a.png") are resolved against baseURL.
func NewClient(baseURL string, timeout time.Duration, maxBytes int64, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// FetchImage returns the raw bytes of an image given as an absolute URL, a
// root-relative path or a data URI.
func (c *Client) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "data:") {
		return c.decodeDataURI(ref)
	}

	target, err := c.resolve(ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	data, err := c.readLimited(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("image fetched",
		zap.String("url", target),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(start)))
	return data, nil
}

func (c *Client) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse reference: %w", err)
	}
	if u.IsAbs() {
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
		}
		return u.String(), nil
	}
	if c.baseURL == "" {
		return "", fmt.Errorf("relative reference %q without a public base URL", ref)
	}
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	return base.ResolveReference(u).String(), nil
}

func (c *Client) readLimited(r io.Reader) ([]byte, error) {
	if c.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, ErrImageTooLarge
	}
	return data, nil
}

func (c *Client) decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URI")
	}

	if !strings.HasSuffix(meta, ";base64") {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data URI: %w", err)
		}
		return c.readLimited(strings.NewReader(unescaped))
	}

	dec := base64.NewDecoder(base64.StdEncoding, strings.NewReader(payload))
	data, err := c.readLimited(dec)
	if err != nil {
		return nil, fmt.Errorf("decode data URI: %w", err)
	}
	return data, nil
}
