// Package account talks to the external account/channel service that owns
// authentication. The core only ever consumes the resolved identity.
package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/datphandbplus/financial-be-sub001/internal/config"
)

// Identity is the account service's answer for one channel token.
type Identity struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	RoleKey string `json:"role_key"`
	Channel string `json:"channel"`
	IsOwner bool   `json:"is_owner"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	rdb        *redis.Client
	cacheTTL   time.Duration
	log        *zap.Logger
}

func NewClient(cfg config.AccountConfig, rdb *redis.Client, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		rdb:        rdb,
		cacheTTL:   ttl,
		log:        log,
	}
}

// Resolve verifies a channel token against the account service. Resolutions
// are cached in redis for the configured TTL, keyed by token hash.
func (c *Client) Resolve(ctx context.Context, token string) (*Identity, error) {
	key := cacheKey(token)

	if c.rdb != nil {
		if cached, err := c.rdb.Get(ctx, key).Result(); err == nil {
			var id Identity
			if err := json.Unmarshal([]byte(cached), &id); err == nil {
				return &id, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/verify", nil)
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("account service rejected token: %d", resp.StatusCode)
	}

	var body struct {
		Code int      `json:"code"`
		Data Identity `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	if body.Code != 0 || body.Data.UserID == "" || body.Data.Channel == "" {
		return nil, fmt.Errorf("account service returned code %d", body.Code)
	}

	if c.rdb != nil {
		if raw, err := json.Marshal(body.Data); err == nil {
			if err := c.rdb.Set(ctx, key, raw, c.cacheTTL).Err(); err != nil {
				c.log.Warn("Cache identity failed", zap.Error(err))
			}
		}
	}

	return &body.Data, nil
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "account:token:" + hex.EncodeToString(sum[:])
}
