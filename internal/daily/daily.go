// internal/daily/daily.go
//
// Calendar helpers shared by streak tracking and the word of the day.
//   - DateKey:     YYYY-MM-DD in a given location.
//   - DaysBetween: whole calendar days between two instants, ignoring time of day.
//   - WordIndex:   deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD for t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// midnight truncates t to the start of its calendar day in loc.
func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from `from` to `to` in loc.
// Negative when `to` is on an earlier day.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	// Dates are rebuilt in UTC so DST shifts never produce 23h/25h days.
	return int(midnight(to, loc).Sub(midnight(from, loc)).Hours() / 24)
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func WordIndex(date time.Time, loc *time.Location, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date, loc)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}
