package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "topic-tree/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LLM provider identifiers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// AIConfig holds settings for the language-model API used to expand
// topics and write drafts.
type AIConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the API: "openai" or "anthropic".
	Provider string `json:"provider" yaml:"provider" validate:"omitempty,oneof=openai anthropic"`

	// Model is the model identifier (e.g. "gpt-4o").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// MetricsConfig holds settings for the keyword metrics API.
type MetricsConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the RapidAPI key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Host is the RapidAPI host header value.
	Host string `json:"host" yaml:"host"`

	// CountryCode selects the search market (default "US").
	CountryCode string `json:"country_code" yaml:"country_code"`

	// CachePath is an optional SQLite file caching known volumes.
	CachePath string `json:"cache_path,omitempty" yaml:"cache_path,omitempty"`

	// CacheTTL is how long a cached volume stays fresh (default 7 days).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

// WordPressConfig holds settings for publishing drafts to WordPress.
type WordPressConfig struct {
	HTTPConfig `yaml:",inline"`

	// URL is the site base URL (e.g. "https://blog.example.com").
	URL string `json:"url" yaml:"url"`

	// User is the WordPress user name.
	User string `json:"user" yaml:"user"`

	// AppPassword is a WordPress application password for User.
	AppPassword string `json:"app_password,omitempty" yaml:"app_password,omitempty"`

	// Status is the post status to create (default "draft").
	Status string `json:"status" yaml:"status" validate:"omitempty,oneof=draft publish pending private"`
}

// TreeConfig holds the parameters of one tree-generation run.
type TreeConfig struct {
	// RootTopic is the topic the tree grows from.
	RootTopic string `json:"root_topic" yaml:"root_topic" validate:"required"`

	// MaxLevel is the deepest level that is expanded. The root is level 1.
	MaxLevel int `json:"max_level" yaml:"max_level" validate:"min=1,max=10"`

	// BranchFactor is the number of child topics requested per expansion.
	BranchFactor int `json:"branch_factor" yaml:"branch_factor" validate:"min=1,max=10"`

	// FetchMetrics enables keyword volume lookups.
	FetchMetrics bool `json:"fetch_metrics" yaml:"fetch_metrics"`

	// PublishDrafts enables draft generation and publishing for new topics.
	PublishDrafts bool `json:"publish_drafts" yaml:"publish_drafts"`

	// MinWordCount is the minimum draft length requested (default 500).
	MinWordCount int `json:"min_word_count" yaml:"min_word_count" validate:"min=0"`
}

// Validate reports whether the run parameters are acceptable.
func (c TreeConfig) Validate() error {
	return ValidateStruct(c)
}
