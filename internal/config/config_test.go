package config

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.API.BaseURL = "https://mastodon.example"
	cfg.API.AccessToken = "tok"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.API.BaseURL != "https://mastodon.example" {
		t.Fatalf("baseURL = %q", got.API.BaseURL)
	}
	if got.Collect.TargetPosts != 500 || got.Collect.TargetUsers != 200 {
		t.Fatalf("collect defaults lost: %+v", got.Collect)
	}
	if len(got.Collect.Hashtags) == 0 {
		t.Fatal("hashtags lost")
	}
}

func TestResolveEnv(t *testing.T) {
	t.Setenv("MASTODON_API_BASE", "https://mastodon.example/")
	t.Setenv("MASTODON_ACCESS_TOKEN", "envtok")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	cfg := Default()
	cfg.ResolveEnv()
	if cfg.API.BaseURL != "https://mastodon.example" {
		t.Fatalf("baseURL = %q, trailing slash must be trimmed", cfg.API.BaseURL)
	}
	if cfg.API.AccessToken != "envtok" || cfg.LLM.APIKey != "sk-env" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Fatalf("model = %q", cfg.LLM.Model)
	}
}

func TestResolveEnvKeepsExplicitValues(t *testing.T) {
	t.Setenv("MASTODON_ACCESS_TOKEN", "envtok")
	cfg := Default()
	cfg.API.AccessToken = "filetok"
	cfg.ResolveEnv()
	if cfg.API.AccessToken != "filetok" {
		t.Fatalf("config value overridden: %q", cfg.API.AccessToken)
	}
}

func TestRequireAPI(t *testing.T) {
	cfg := Default()
	if err := cfg.RequireAPI(); err == nil {
		t.Fatal("expected error without credentials")
	}
	cfg.API.BaseURL = "https://mastodon.example"
	if err := cfg.RequireAPI(); err == nil {
		t.Fatal("expected error without token")
	}
	cfg.API.AccessToken = "t"
	if err := cfg.RequireAPI(); err != nil {
		t.Fatalf("RequireAPI: %v", err)
	}
}

func TestInstanceDomain(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"https://Mastodon.Social", "mastodon.social"},
		{"https://fosstodon.org/extra/path", "fosstodon.org"},
		{"", "unknown"},
	}
	for _, c := range cases {
		cfg := Config{API: APIConfig{BaseURL: c.base}}
		if got := cfg.InstanceDomain(); got != c.want {
			t.Fatalf("InstanceDomain(%q) = %q, want %q", c.base, got, c.want)
		}
	}
}
