package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "advisor.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "absent.yaml"))
	cfg, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Default()
	if cfg.ListenAddr != def.ListenAddr {
		t.Fatalf("listen addr=%q, want default %q", cfg.ListenAddr, def.ListenAddr)
	}
	if cfg.Pricing != def.Pricing {
		t.Fatalf("pricing should be default: %+v", cfg.Pricing)
	}
}

func TestLoad_PartialPricingOverride(t *testing.T) {
	path := writeConfig(t, `
sales_email: leads@shop.example
pricing:
  battery_service: 219
  ram_upgrade_small: 350
`)
	cfg, err := NewLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SalesEmail != "leads@shop.example" {
		t.Fatalf("sales email=%q", cfg.SalesEmail)
	}
	if cfg.Pricing.BatteryService != 219 || cfg.Pricing.RAMUpgradeSmall != 350 {
		t.Fatalf("overrides not applied: %+v", cfg.Pricing)
	}
	// 未覆盖的项保持默认。
	if cfg.Pricing.BackupSetup != Default().Pricing.BackupSetup {
		t.Fatalf("untouched entry changed: %+v", cfg.Pricing)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"negative price": "pricing:\n  ssd_upgrade: -1\n",
		"bad sales mail": "sales_email: not-an-address\n",
		"bad smtp port":  "smtp:\n  port: 70000\n",
		"empty listen":   "listen_addr: \" \"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, content)
			if _, err := NewLoader(path).Load(context.Background()); err == nil {
				t.Fatalf("expected validation error for %s", name)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADVISOR_SMTP_HOST", "mail.shop.example")
	t.Setenv("ADVISOR_SMTP_PORT", "587")
	t.Setenv("ADVISOR_SALES_EMAIL", "env-sales@shop.example")

	path := writeConfig(t, "sales_email: file-sales@shop.example\n")
	cfg, err := NewLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SMTP.Host != "mail.shop.example" || cfg.SMTP.Port != 587 {
		t.Fatalf("smtp env override not applied: %+v", cfg.SMTP)
	}
	if cfg.SalesEmail != "env-sales@shop.example" {
		t.Fatalf("env should win over file: %q", cfg.SalesEmail)
	}
}
