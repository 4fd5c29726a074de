package redis

import (
	"context"
	"strings"
)

// compareAndDelete runs server side so a lock that expired and was taken by
// another holder between GET and DEL is never removed.
const compareAndDelete = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// LockKey names a singleton lock per environment. A blank env means local.
func LockKey(name, env string) string {
	if env = strings.TrimSpace(env); env == "" {
		env = "local"
	}
	return key("lock", name, env)
}

// CompareAndDelete deletes key only while it still holds token and reports
// whether it did.
func (c *Client) CompareAndDelete(ctx context.Context, key, token string) (bool, error) {
	if err := c.ready(); err != nil {
		return false, err
	}
	n, err := c.cmd.Eval(ctx, compareAndDelete, []string{key}, token).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
