package config

import (
	"testing"
	"time"
)

func loadWithOfficialURLs(t *testing.T) *Config {
	t.Helper()
	t.Setenv("VESRATES_OFFICIAL_USD_URL", "http://example.com/bcv/usd")
	t.Setenv("VESRATES_OFFICIAL_EUR_URL", "http://example.com/bcv/eur")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := loadWithOfficialURLs(t)

	if cfg.P2P.SampleInterval != 10*time.Second {
		t.Fatalf("默认采样间隔应为 10s, 实际 %s", cfg.P2P.SampleInterval)
	}
	if cfg.Official.Interval != time.Minute {
		t.Fatalf("默认聚合间隔应为 60s, 实际 %s", cfg.Official.Interval)
	}
	if cfg.History.Retention != 720*time.Hour {
		t.Fatalf("默认保留窗口应为 30 天, 实际 %s", cfg.History.Retention)
	}
	if cfg.History.DedupInterval != 5*time.Second {
		t.Fatalf("默认去重间隔应为 5s, 实际 %s", cfg.History.DedupInterval)
	}
	if cfg.P2P.URL == "" {
		t.Fatal("p2p.url 应有默认值")
	}
}

func TestValidateRequiresOfficialURLs(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("缺少 official.usd_url 应报错")
	}

	t.Setenv("VESRATES_OFFICIAL_USD_URL", "http://example.com/bcv/usd")
	if _, err := Load(""); err == nil {
		t.Fatal("endpoint 模式缺少 official.eur_url 应报错")
	}

	t.Setenv("VESRATES_OFFICIAL_EUR_MODE", "none")
	if _, err := Load(""); err != nil {
		t.Fatalf("eur_mode=none 时不应要求 eur_url: %v", err)
	}
}

func TestValidateEURMode(t *testing.T) {
	cfg := loadWithOfficialURLs(t)

	cfg.Official.EURMode = "cross"
	cfg.Official.CrossURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("cross 模式缺少 cross_url 应报错")
	}

	cfg.Official.EURMode = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("未知 eur_mode 应报错")
	}
}

func TestValidateIntervals(t *testing.T) {
	cfg := loadWithOfficialURLs(t)

	cfg.P2P.SampleInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("sample_interval=0 应报错")
	}
}
