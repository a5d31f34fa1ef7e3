package pagination

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any cursor query can request.
	MaxLimit = 100
)

// Cursor is the keyset position of the last item a client has seen.
type Cursor struct {
	CreatedAtMillis int64
	ID              int64
}

// CreatedAt returns the cursor timestamp in UTC.
func (c Cursor) CreatedAt() time.Time {
	return time.UnixMilli(c.CreatedAtMillis).UTC()
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer returns the normalization result plus one to detect the next page.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor builds the opaque token for (createdAt, id). It reports false
// when either component is missing; callers must then omit the token entirely.
func EncodeCursor(createdAt *time.Time, id *int64) (string, bool) {
	if createdAt == nil || id == nil {
		return "", false
	}
	payload := strconv.FormatInt(createdAt.UnixMilli(), 10) + ":" + strconv.FormatInt(*id, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(payload)), true
}

// DecodeCursor parses a token produced by EncodeCursor. It never fails: any
// malformed input is reported as an absent cursor so the caller starts from
// the first page. Fields after the second are ignored.
func DecodeCursor(token string) (Cursor, bool) {
	if strings.TrimSpace(token) == "" {
		return Cursor{}, false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return Cursor{}, false
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) < 2 {
		return Cursor{}, false
	}

	millis, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Cursor{}, false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Cursor{}, false
	}

	return Cursor{CreatedAtMillis: millis, ID: id}, true
}
