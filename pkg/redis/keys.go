package redis

import "strings"

const namespace = "sf"

// key joins non-empty parts under the namespace: sf:<part>:<part>...
func key(parts ...string) string {
	var b strings.Builder
	b.WriteString(namespace)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}

func (c *Client) IdempotencyKey(scope, id string) string {
	return key("idempotency", scope, id)
}

// CatalogKey names the cached product projection for one sort order.
func (c *Client) CatalogKey(sort string) string {
	return key("catalog", sort)
}
