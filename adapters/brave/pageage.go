package brave

import (
	"errors"
	"time"
)

var pageAgeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parsePageAge handles the handful of timestamp shapes Brave emits in
// page_age.
func parsePageAge(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("empty page_age")
	}
	for _, layout := range pageAgeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.New("unrecognised page_age format")
}
