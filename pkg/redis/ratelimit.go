package redis

import (
	"context"
	"strconv"
	"time"
)

// FixedWindowAllow counts a hit against scope in the current window and
// reports whether the count is still within limit. Each window gets its own
// key, so a lost EXPIRE can only leak one stale counter, never block callers.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if err := c.ready(); err != nil {
		return false, 0, err
	}
	if window <= 0 {
		window = time.Minute
	}
	bucket := c.clock().UnixNano() / int64(window)
	counter := key("rate_limit", scope, strconv.FormatInt(bucket, 10))

	count, err := c.cmd.Incr(ctx, counter).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := c.cmd.Expire(ctx, counter, window).Err(); err != nil {
			return true, count, err
		}
	}
	return count <= limit, count, nil
}
