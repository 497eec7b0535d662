package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/otp"
)

const (
	// CodeRateWindow is the window of the per-user code generation limit
	CodeRateWindow = time.Minute
)

// Key patterns
const (
	codeCacheKeyPattern = "otp_code:%s:%d" // accountID:counter
	codeUsedKeyPattern  = "otp_used:%s:%s" // accountID:code
	codeRateKeyPattern  = "otp_rate:%s"    // userID
)

// CodeCacheKey generates the key for a cached TOTP code of one time window
func CodeCacheKey(accountID string, counter uint64) string {
	return fmt.Sprintf(codeCacheKeyPattern, accountID, counter)
}

// CodeUsedKey generates the key for tracking verified codes
func CodeUsedKey(accountID, code string) string {
	return fmt.Sprintf(codeUsedKeyPattern, accountID, code)
}

// CodeRateKey generates the key for the per-user generation counter
func CodeRateKey(userID string) string {
	return fmt.Sprintf(codeRateKeyPattern, userID)
}

// GetCachedCode returns the cached code of a window, or nil when absent
func (c *Client) GetCachedCode(ctx context.Context, accountID string, counter uint64) (*otp.Code, error) {
	val, err := c.get(ctx, CodeCacheKey(accountID, counter))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var code otp.Code
	if err := json.Unmarshal([]byte(val), &code); err != nil {
		return nil, fmt.Errorf("decode cached code: %w", err)
	}
	return &code, nil
}

// CacheCode stores a code until its window closes
func (c *Client) CacheCode(ctx context.Context, accountID string, counter uint64, code *otp.Code) error {
	if code.TimeRemaining <= 0 {
		return nil
	}
	data, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("encode code: %w", err)
	}
	return c.set(ctx, CodeCacheKey(accountID, counter), data, time.Duration(code.TimeRemaining)*time.Second)
}

// MarkCodeUsed records a verified code for replay protection.
// Returns true if this is a new code (not a replay), false if already used
func (c *Client) MarkCodeUsed(ctx context.Context, accountID, code string, ttl time.Duration) (bool, error) {
	return c.setNX(ctx, CodeUsedKey(accountID, code), "used", ttl)
}

// IncrementCodeRate counts a code generation for userID in the current window
// and returns the new count with the time left in the window
func (c *Client) IncrementCodeRate(ctx context.Context, userID string) (int64, time.Duration, error) {
	return c.incrWithExpiry(ctx, CodeRateKey(userID), CodeRateWindow)
}
