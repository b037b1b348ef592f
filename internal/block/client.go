package block

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"creatures-server/internal/shared/errors"
)

// Client fetches block data from an esplora-compatible HTTP API.
type Client struct {
	apiURL     string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

type ClientOptions struct {
	APIURL       string
	FetchTimeout time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

func NewClient(opts ClientOptions, logger *slog.Logger) *Client {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Second
	}

	logger.Debug("Initializing block client",
		"api_url", opts.APIURL,
		"max_retries", opts.MaxRetries,
		"fetch_timeout", opts.FetchTimeout,
	)

	return &Client{
		apiURL:     strings.TrimSuffix(opts.APIURL, "/"),
		httpClient: &http.Client{Timeout: opts.FetchTimeout},
		maxRetries: opts.MaxRetries,
		backoff:    opts.RetryBackoff,
		logger:     logger,
	}
}

// FetchByHeight loads block data for a height, including its current
// confirmation count relative to the chain tip.
func (c *Client) FetchByHeight(ctx context.Context, height int64) (*Data, error) {
	logger := c.logger.With(
		"component", "block_client",
		"operation", "fetch_by_height",
		"height", height,
	)

	if height < 0 {
		return nil, errors.Validationf("block height must be non-negative, got %d", height)
	}

	hash, err := c.fetchBlockHash(ctx, height)
	if err != nil {
		return nil, err
	}

	return c.fetchData(ctx, hash, logger)
}

// FetchByHash loads block data for a block hash.
func (c *Client) FetchByHash(ctx context.Context, hash string) (*Data, error) {
	logger := c.logger.With(
		"component", "block_client",
		"operation", "fetch_by_hash",
		"hash", hash,
	)

	if len(hash) < 8 {
		return nil, errors.Validationf("block hash too short: %q", hash)
	}

	return c.fetchData(ctx, hash, logger)
}

func (c *Client) fetchData(ctx context.Context, hash string, logger *slog.Logger) (*Data, error) {
	var raw apiBlock
	if err := c.getJSON(ctx, "/block/"+hash, &raw); err != nil {
		logger.Error("Failed to fetch block", "error", err)
		return nil, err
	}

	tipHeight, err := c.fetchTipHeight(ctx)
	if err != nil {
		logger.Error("Failed to fetch chain tip height", "error", err)
		return nil, err
	}

	confirmations := tipHeight - raw.Height + 1
	if confirmations < 0 {
		confirmations = 0
	}

	data := &Data{
		Height:        raw.Height,
		Hash:          raw.ID,
		Nonce:         raw.Nonce,
		Timestamp:     raw.Timestamp,
		Confirmations: confirmations,
	}

	logger.Debug("Block fetched",
		"block_height", data.Height,
		"confirmations", data.Confirmations,
	)
	return data, nil
}

func (c *Client) fetchBlockHash(ctx context.Context, height int64) (string, error) {
	body, err := c.getText(ctx, fmt.Sprintf("/block-height/%d", height))
	if err != nil {
		return "", err
	}
	hash := strings.TrimSpace(body)
	if hash == "" {
		return "", errors.External(fmt.Sprintf("empty block hash for height %d", height))
	}
	return hash, nil
}

func (c *Client) fetchTipHeight(ctx context.Context) (int64, error) {
	body, err := c.getText(ctx, "/blocks/tip/height")
	if err != nil {
		return 0, err
	}
	height, err := strconv.ParseInt(strings.TrimSpace(body), 10, 64)
	if err != nil {
		return 0, errors.WrapExternal("invalid tip height response", err)
	}
	return height, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	body, err := c.getText(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return errors.WrapExternal("failed to decode block API response", err)
	}
	return nil
}

// getText performs a GET with retries. Each failed attempt doubles the
// backoff before the next try.
func (c *Client) getText(ctx context.Context, path string) (string, error) {
	url := c.apiURL + path
	logger := c.logger.With("component", "block_client", "url", url)

	var lastErr error
	backoff := c.backoff

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			logger.Warn("Retrying block API request",
				"attempt", attempt,
				"backoff", backoff,
				"last_error", lastErr,
			)
			select {
			case <-ctx.Done():
				return "", errors.WrapExternal("block API request cancelled", ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		body, err := c.doRequest(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
	}

	logger.Error("Block API request failed after retries",
		"attempts", c.maxRetries,
		"error", lastErr,
	)
	return "", errors.WrapExternal(fmt.Sprintf("block API request failed after %d attempts", c.maxRetries), lastErr)
}

func (c *Client) doRequest(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("block API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}
