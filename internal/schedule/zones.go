package schedule

import (
	"strings"
	"time"
)

// zoneOffsets maps the zone names offered by the schedule picker to fixed
// UTC offsets in minutes. DST transitions are intentionally not modeled;
// persisted next-run values assume these fixed offsets.
var zoneOffsets = map[string]int{
	"UTC":                 0,
	"GMT":                 0,
	"Europe/London":       0,
	"Europe/Paris":        60,
	"Europe/Berlin":       60,
	"Europe/Madrid":       60,
	"Europe/Rome":         60,
	"Africa/Cairo":        120,
	"Europe/Athens":       120,
	"Africa/Johannesburg": 120,
	"Europe/Moscow":       180,
	"Asia/Riyadh":         180,
	"Asia/Dubai":          240,
	"Asia/Karachi":        300,
	"Asia/Kolkata":        330,
	"Asia/Dhaka":          360,
	"Asia/Bangkok":        420,
	"Asia/Jakarta":        420,
	"Asia/Singapore":      480,
	"Asia/Shanghai":       480,
	"Asia/Tokyo":          540,
	"Australia/Sydney":    600,
	"Pacific/Auckland":    720,
	"America/Sao_Paulo":   -180,
	"America/New_York":    -300,
	"America/Chicago":     -360,
	"America/Denver":      -420,
	"America/Los_Angeles": -480,
	"America/Anchorage":   -540,
	"Pacific/Honolulu":    -600,
}

// Zone resolves a zone name to a fixed-offset location. Unknown names
// resolve to UTC so a stale or mistyped zone never breaks scheduling.
func Zone(name string) *time.Location {
	offset, ok := zoneOffsets[name]
	if !ok {
		return time.UTC
	}
	return time.FixedZone(zoneLabel(name), offset*60)
}

// zoneLabel is the short display name, e.g. "Africa/Cairo" -> "Cairo".
func zoneLabel(name string) string {
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.ReplaceAll(name, "_", " ")
}
