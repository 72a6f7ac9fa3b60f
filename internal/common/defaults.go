// Package common provides shared utilities and default configuration.
package common

// DefaultKVValue represents a default key/value pair that is seeded on startup.
type DefaultKVValue struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// GetDefaultKVValues returns the list of default KV values seeded on startup.
// This is the single source of truth for default values. Existing keys are
// never overwritten, so dashboard edits survive restarts.
func GetDefaultKVValues() []DefaultKVValue {
	return []DefaultKVValue{
		{
			Key:         "smtp_host",
			Value:       "smtp.gmail.com",
			Description: "SMTP server host for digest delivery",
		},
		{
			Key:         "smtp_port",
			Value:       "587",
			Description: "SMTP server port (587 for STARTTLS, 465 for TLS)",
		},
	}
}
