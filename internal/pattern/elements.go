package pattern

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	definitionRe = regexp.MustCompile(`^(\s*)\{([^{}]+)\} (.+)$`)
	linkRe       = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^()\s]+)\)`)
	// gpsRe groups: keyword, latitude, latitude fraction, longitude,
	// longitude fraction, name.
	gpsRe = regexp.MustCompile(`(GPS|gps)\s*\(\s*(-?\d{1,3}(\.\d+)?)\s*,\s*(-?\d{1,3}(\.\d+)?)\s*\)\s*(.*)$`)
)

// Definition is a parsed "{term} definition" line.
type Definition struct {
	Indent     string
	Term       string
	Definition string
}

// ParseDefinition parses a definition line.
func ParseDefinition(line string) (Definition, bool) {
	m := definitionRe.FindStringSubmatch(line)
	if m == nil {
		return Definition{}, false
	}
	return Definition{Indent: m[1], Term: strings.TrimSpace(m[2]), Definition: strings.TrimSpace(m[3])}, true
}

// Indentation returns the width of the leading whitespace of line.
func Indentation(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// RawLink is a Markdown link as written in a note.
type RawLink struct {
	Text     string
	Target   string
	External bool
}

// IsExternal reports whether target is an absolute web URL.
func IsExternal(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// ParseLinks returns every non-image Markdown link on line.
func ParseLinks(line string) []RawLink {
	var out []RawLink
	for _, m := range linkRe.FindAllStringSubmatch(line, -1) {
		if m[1] == "!" {
			continue
		}
		out = append(out, RawLink{Text: m[2], Target: m[3], External: IsExternal(m[3])})
	}
	return out
}

// GPS is a parsed coordinate annotation.
type GPS struct {
	Latitude  float64
	Longitude float64
	Name      string
}

// ParseGPS parses "GPS (lat, lon) name". Coordinates outside the valid
// ranges do not match.
func ParseGPS(line string) (GPS, bool) {
	m := gpsRe.FindStringSubmatch(line)
	if m == nil {
		return GPS{}, false
	}
	lat, err := strconv.ParseFloat(m[2], 64)
	if err != nil || lat < -90 || lat > 90 {
		return GPS{}, false
	}
	lon, err := strconv.ParseFloat(m[4], 64)
	if err != nil || lon < -180 || lon > 180 {
		return GPS{}, false
	}
	return GPS{Latitude: lat, Longitude: lon, Name: strings.TrimSpace(m[6])}, true
}
