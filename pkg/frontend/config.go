package frontend

// Config represents frontend configuration. The pages are served by the API
// server when enabled.
type Config struct {
	Enabled bool `yaml:"enabled" default:"true"`
}
