package repository

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	log "github.com/sirupsen/logrus"
)

// Layouts tried in order when parsing spreadsheet timestamps. Cells carry
// naive local times, so all parsing happens in the server's location.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// ParseTimestamp parses a raw timestamp cell into a local time. It returns
// nil when the cell is blank, and also when it matches no supported format,
// in which case the bad value is logged and treated as absent.
func ParseTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return &t
		}
	}
	t, err := dateparse.ParseLocal(value)
	if err != nil {
		log.Warnf("could not parse timestamp %q, treating as absent", value)
		return nil
	}
	return &t
}
