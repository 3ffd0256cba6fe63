package driven

// ConfigStore keeps user settings under dotted keys such as "ai.provider".
// Writes are durable when they return.
type ConfigStore interface {
	// GetString returns "" for a missing or non-string value.
	GetString(key string) string

	// GetInt returns 0 for a missing or non-integer value.
	GetInt(key string) int

	Set(key string, value any) error

	// Unset removes key. Removing a missing key is not an error.
	Unset(key string) error

	// Path names where the settings live, for display.
	Path() string
}
