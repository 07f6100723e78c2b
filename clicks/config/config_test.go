package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"CLICKS_URL", "CLICKS_TARGET_ID", "PORT", "FETCH_TIMEOUT", "REFRESH_INTERVAL", "REFRESH_ON_VIEW"} {
		t.Setenv(k, "")
	}

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if c.ClicksURL != DefaultClicksURL {
		t.Errorf("expected default url, got %s", c.ClicksURL)
	}
	if c.TargetID != "clicks" {
		t.Errorf("expected target id clicks, got %s", c.TargetID)
	}
	if c.FetchTimeout != 30*time.Second {
		t.Errorf("expected 30s fetch timeout, got %v", c.FetchTimeout)
	}
	if c.RefreshInterval != 0 {
		t.Errorf("expected periodic refresh disabled, got %v", c.RefreshInterval)
	}
	if !c.RefreshOnView {
		t.Errorf("expected refresh on view enabled by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CLICKS_URL", "http://127.0.0.1:9000/clicks")
	t.Setenv("CLICKS_TARGET_ID", "board")
	t.Setenv("REFRESH_INTERVAL", "15")
	t.Setenv("REFRESH_ON_VIEW", "false")
	t.Setenv("MAX_IDLE_CONNS", "not-a-number")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if c.ClicksURL != "http://127.0.0.1:9000/clicks" || c.TargetID != "board" {
		t.Errorf("unexpected source/target: %s #%s", c.ClicksURL, c.TargetID)
	}
	if c.RefreshInterval != 15*time.Second {
		t.Errorf("expected 15s interval, got %v", c.RefreshInterval)
	}
	if c.RefreshOnView {
		t.Errorf("expected refresh on view disabled")
	}
	if c.MaxIdleConns != 100 {
		t.Errorf("expected fallback to default for invalid int, got %d", c.MaxIdleConns)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CLICKS_TARGET_ID=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	// 交给 godotenv 写入，测试结束时清掉
	t.Setenv("CLICKS_TARGET_ID", "")
	os.Unsetenv("CLICKS_TARGET_ID")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if c.TargetID != "from-dotenv" {
		t.Errorf("expected target id from .env, got %s", c.TargetID)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"relative url", func(c *Config) { c.ClicksURL = "/clicks" }, true},
		{"ftp url", func(c *Config) { c.ClicksURL = "ftp://example.com/clicks" }, true},
		{"empty target", func(c *Config) { c.TargetID = "  " }, true},
		{"negative interval", func(c *Config) { c.RefreshInterval = -time.Second }, true},
		{"write timeout shorter than fetch", func(c *Config) {
			c.RefreshOnView, c.FetchTimeout, c.WriteTimeout = true, 30*time.Second, 10*time.Second
		}, true},
		{"fetch without timeout on view", func(c *Config) {
			c.RefreshOnView, c.FetchTimeout, c.WriteTimeout = true, 0, 10*time.Second
		}, true},
		{"write timeout covers fetch", func(c *Config) {
			c.RefreshOnView, c.FetchTimeout, c.WriteTimeout = true, 30*time.Second, 40*time.Second
		}, false},
		{"tracker with relative redirect", func(c *Config) {
			c.TrackerEnabled, c.TrackerRedirectURL = true, "/signup"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{ClicksURL: DefaultClicksURL, TargetID: "clicks"}
			tt.mutate(c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func resetSingleton() {
	once = sync.Once{}
	cfg = nil
	loadErr = nil
}

func TestLoadConfigKeepsError(t *testing.T) {
	resetSingleton()
	t.Cleanup(resetSingleton)
	t.Setenv("CLICKS_URL", "/relative")

	for i := 0; i < 2; i++ {
		c, err := LoadConfig()
		if err == nil {
			t.Fatalf("call %d: expected validation error, got config %+v", i+1, c)
		}
		if c != nil {
			t.Errorf("call %d: expected nil config on error", i+1)
		}
	}
}

func TestDefaultTimeoutsAreConsistent(t *testing.T) {
	for _, k := range []string{"WRITE_TIMEOUT", "FETCH_TIMEOUT", "REFRESH_ON_VIEW"} {
		t.Setenv(k, "")
	}
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if c.WriteTimeout <= c.FetchTimeout {
		t.Errorf("default WRITE_TIMEOUT %s must exceed FETCH_TIMEOUT %s", c.WriteTimeout, c.FetchTimeout)
	}
}

func TestSharedComponents(t *testing.T) {
	c := &Config{ClicksURL: DefaultClicksURL, TargetID: "clicks", LogLevel: "error", Application: &application{}}

	if c.GetRenderer() != c.GetRenderer() {
		t.Errorf("expected the renderer to be built once")
	}
	if c.GetRegion().ID() != "clicks" {
		t.Errorf("unexpected region id %s", c.GetRegion().ID())
	}
	if c.Application.GinServer() != c.Application.GinServer() {
		t.Errorf("expected a single gin engine")
	}
	if c.Application.GinRootRouter() == nil {
		t.Errorf("expected root router")
	}
}
