package feed

import (
	"encoding/json"
	"math"
)

// recentChange is the subset of a Wikimedia recentchange message we read.
type recentChange struct {
	Type   string `json:"type"`
	Wiki   string `json:"wiki"`
	Title  string `json:"title"`
	Length *struct {
		Old *float64 `json:"old"`
		New *float64 `json:"new"`
	} `json:"length"`
}

// ParseRecentChange decodes a recentchange message. The magnitude is
// length.new - length.old, where a missing side counts as zero. Messages
// without a length object (log entries, categorisation) are skipped.
func ParseRecentChange(data []byte) (Event, bool) {
	var rc recentChange
	if err := json.Unmarshal(data, &rc); err != nil {
		return Event{}, false
	}
	if rc.Length == nil {
		return Event{}, false
	}
	var oldLen, newLen float64
	if rc.Length.Old != nil {
		oldLen = *rc.Length.Old
	}
	if rc.Length.New != nil {
		newLen = *rc.Length.New
	}
	m := newLen - oldLen
	if math.IsNaN(m) {
		return Event{}, false
	}
	return Event{Magnitude: m, Wiki: rc.Wiki, Title: rc.Title}, true
}

// ParseMessage decodes either a bare {"magnitude": n} object or a
// recentchange message.
func ParseMessage(data []byte) (Event, bool) {
	var bare struct {
		Magnitude *float64 `json:"magnitude"`
		Title     string   `json:"title"`
	}
	if err := json.Unmarshal(data, &bare); err != nil {
		return Event{}, false
	}
	if bare.Magnitude != nil {
		if math.IsNaN(*bare.Magnitude) {
			return Event{}, false
		}
		return Event{Magnitude: *bare.Magnitude, Title: bare.Title}, true
	}
	return ParseRecentChange(data)
}
