package config

import "time"

// GeminiConfig holds Google Gemini-specific configuration
type GeminiConfig struct {
	APIKey  string        `env:"GEMINI_API_KEY" yaml:"-"`
	Model   string        `env:"GEMINI_MODEL" yaml:"model" default:"gemini-2.5-flash"`
	Project string        `env:"GOOGLE_CLOUD_PROJECT" yaml:"project"` // Optional: for Vertex AI
	Region  string        `env:"GOOGLE_CLOUD_REGION" yaml:"region"`   // Optional: for Vertex AI
	Timeout time.Duration `env:"GEMINI_TIMEOUT" yaml:"timeout" default:"60s"`
}

// UseVertexAI reports whether the Vertex AI backend should be used instead of the Gemini API.
func (g GeminiConfig) UseVertexAI() bool {
	return g.Project != "" && g.Region != ""
}
