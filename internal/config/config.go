package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model. It captures API
// credentials, collection targets, LLM settings, and output locations.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Collect CollectConfig `yaml:"collect"`
	LLM     LLMConfig     `yaml:"llm"`
	Paths   PathsConfig   `yaml:"paths"`
}

type APIConfig struct {
	// Mastodon instance base URL. If empty, read from env MASTODON_API_BASE
	BaseURL string `yaml:"baseURL"`
	// App access token. If empty, read from env MASTODON_ACCESS_TOKEN
	AccessToken string `yaml:"accessToken"`
}

type CollectConfig struct {
	// Hashtags to seed post collection from (no '#' symbol)
	Hashtags []string `yaml:"hashtags"`
	// Final post count after trimming
	TargetPosts int `yaml:"targetPosts"`
	// Extra posts collected above target before trimming
	Buffer int `yaml:"buffer"`
	// Items per timeline API call
	BatchLimit int `yaml:"batchLimit"`
	// Cap on thread-context posts pulled per seed
	MaxContextPerSeed int `yaml:"maxContextPerSeed"`
	// Seed accounts for user expansion, acct form "name@instance"
	SeedAccounts []string `yaml:"seedAccounts"`
	TargetUsers  int      `yaml:"targetUsers"`
	// Items per followers/following API call
	FetchLimit int `yaml:"fetchLimit"`
	// Polite pacing between calls, milliseconds
	PaceMs int `yaml:"paceMs"`
}

type LLMConfig struct {
	Model string `yaml:"model"`
	// If empty, read from env OPENAI_API_KEY
	APIKey string `yaml:"apiKey"`
	// Optional OpenAI-compatible endpoint override (env OPENAI_BASE_URL)
	BaseURL string `yaml:"baseURL"`
}

type PathsConfig struct {
	DataDir    string `yaml:"dataDir"`
	GraphsDir  string `yaml:"graphsDir"`
	MeasureDir string `yaml:"measureDir"`
	ContentDir string `yaml:"contentDir"`
	DBPath     string `yaml:"dbPath"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		API: APIConfig{},
		Collect: CollectConfig{
			Hashtags: []string{
				"ai", "artificialintelligence", "machinelearning", "llm",
				"generativeAI", "ChatGPT", "deeplearning", "aiethics",
			},
			TargetPosts:       500,
			Buffer:            250,
			BatchLimit:        40,
			MaxContextPerSeed: 30,
			SeedAccounts: []string{
				"machinelearning@mastodon.social",
				"techcrunch@mastodon.social",
			},
			TargetUsers: 200,
			FetchLimit:  40,
			PaceMs:      350,
		},
		LLM: LLMConfig{Model: "gpt-4o-mini"},
		Paths: PathsConfig{
			DataDir:    "./data",
			GraphsDir:  "./graphs",
			MeasureDir: "./graphs/measures",
			ContentDir: "./content",
			DBPath:     "./fedilens.db",
		},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = os.Getenv("MASTODON_API_BASE")
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.AccessToken == "" {
		c.API.AccessToken = os.Getenv("MASTODON_ACCESS_TOKEN")
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.LLM.Model = v
	}
}

// RequireAPI fails fast when instance credentials are missing.
func (c Config) RequireAPI() error {
	if c.API.BaseURL == "" {
		return errors.New("set MASTODON_API_BASE (e.g., https://mastodon.social) in env or config")
	}
	if c.API.AccessToken == "" {
		return errors.New("set MASTODON_ACCESS_TOKEN in env or config")
	}
	return nil
}

// RequireLLM fails fast when the model API key is missing.
func (c Config) RequireLLM() error {
	if c.LLM.APIKey == "" {
		return errors.New("set OPENAI_API_KEY in env or config")
	}
	return nil
}

// InstanceDomain returns the host part of the API base URL, used as the
// domain for local accts whose handle has no domain part.
func (c Config) InstanceDomain() string {
	s := c.API.BaseURL
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "unknown"
	}
	return strings.ToLower(s)
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
