package askmeanything

const (
	// Name identifies the service in logs and health responses
	Name = "ask-me-anything"

	// Version is the current release
	Version = "0.1.0"
)
