package helper

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// LapTime formats a lap duration as minutes:seconds.milliseconds.
func LapTime(d time.Duration) string {
	seconds := d.Seconds()
	if seconds <= 0 {
		return "-"
	}
	minutes := int(seconds / 60)
	seconds = seconds - float64(minutes*60)
	milliseconds := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d.%03d", minutes, int(seconds), milliseconds)
}

// DriverCode derives a three letter code from a full name. The surname is
// used when it is long enough, e.g. "Max VERSTAPPEN" becomes "VER".
func DriverCode(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	last := words[len(words)-1]
	if len(last) >= 3 {
		return strings.ToUpper(last[:3])
	}
	code := strings.Join(words, "")
	if len(code) > 3 {
		code = code[:3]
	}
	return strings.ToUpper(code)
}

// ParseDriverCodes splits a comma separated list of driver codes. Codes are
// trimmed and upper cased, empty and repeated entries are dropped.
func ParseDriverCodes(s string) []string {
	codes := lo.Map(strings.Split(s, ","), func(c string, _ int) string {
		return strings.ToUpper(strings.TrimSpace(c))
	})
	return lo.Uniq(lo.Compact(codes))
}
