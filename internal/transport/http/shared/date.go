package shared

import "time"

// ParseDate reads the two date shapes the API sees: plain YYYY-MM-DD from
// request and holiday payloads, RFC3339 from clients that send full
// timestamps. An empty value parses to the zero time without error.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed, nil
	}
	return time.Parse(time.RFC3339, value)
}
