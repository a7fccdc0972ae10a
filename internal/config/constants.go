package config

// Port configuration constants
const (
	// DefaultPort is the address the greeting server listens on
	DefaultPort = ":3000"
)

// Logging defaults
const (
	DefaultLogDir            = "./logs"
	DefaultLogRotateSchedule = "@daily"
)
