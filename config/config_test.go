package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":10020" {
		t.Fatalf("server.address = %q", cfg.Server.Address)
	}
	if cfg.Fusion.Deadline != 10*time.Second {
		t.Fatalf("fusion.deadline = %s", cfg.Fusion.Deadline)
	}
	if cfg.Cache.Backend != "postgres" {
		t.Fatalf("cache.backend = %q", cfg.Cache.Backend)
	}
	if cfg.Cache.NewsTTL != 6*time.Hour || cfg.Cache.BackgroundTTL != 7*24*time.Hour {
		t.Fatalf("ttl defaults = %s / %s", cfg.Cache.NewsTTL, cfg.Cache.BackgroundTTL)
	}
	if cfg.Sources.Tavily.Endpoint == "" {
		t.Fatal("tavily endpoint default missing")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SEARCHFUSION_CACHE_BACKEND", "redis")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cache.Backend != "redis" {
		t.Fatalf("cache.backend = %q, want env override", cfg.Cache.Backend)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SEARCHFUSION_CACHE_BACKEND", "memcached")
	if _, err := Load(""); err == nil {
		t.Fatal("unknown cache backend accepted")
	}
}

func TestPostgresDSN(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		cfg     PostgresConfig
		want    string
		wantErr bool
	}{
		{
			"explicit url wins",
			PostgresConfig{URL: "postgres://u:p@db:5432/cache", Host: "ignored"},
			"postgres://u:p@db:5432/cache", false,
		},
		{
			"assembled from parts",
			PostgresConfig{Host: "db", User: "u", Password: "p", DBName: "cache"},
			"postgres://u:p@db:5432/cache?sslmode=disable", false,
		},
		{"unconfigured", PostgresConfig{}, "", true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := tc.cfg.DSN()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("DSN() = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DSN(): %v", err)
			}
			if got != tc.want {
				t.Fatalf("DSN() = %q, want %q", got, tc.want)
			}
		})
	}
}
