package config

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strconv"
	"strings"

	"mac-advisor/internal/domain/model"

	"gopkg.in/yaml.v3"
)

// ServiceConfig 是服务的运行配置。
// 价目表可在 YAML 里按项覆盖；SMTP 凭据建议走环境变量而不是写进文件。
type ServiceConfig struct {
	ListenAddr string        `yaml:"listen_addr"`
	SalesEmail string        `yaml:"sales_email"`
	SMTP       SMTPConfig    `yaml:"smtp"`
	Pricing    model.Pricing `yaml:"pricing"`
}

// SMTPConfig 是外部邮件投递服务的连接参数。
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Default 返回内置默认配置（本地试用可直接起服务，邮件发不出去但评估可用）。
func Default() ServiceConfig {
	return ServiceConfig{
		ListenAddr: "127.0.0.1:8686",
		SalesEmail: "sales@localhost",
		SMTP: SMTPConfig{
			Host: "localhost",
			Port: 25,
			From: "advisor@localhost",
		},
		Pricing: model.DefaultPricing(),
	}
}

// Loader 负责从磁盘读取并校验服务配置。
type Loader struct {
	File string
}

func NewLoader(file string) *Loader {
	return &Loader{File: file}
}

// Load 读取配置文件并做基础校验。
// 文件不存在时回落到内置默认值（加环境变量覆盖），缺文件不算错误。
func (l *Loader) Load(ctx context.Context) (*ServiceConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := Default()

	raw, err := os.ReadFile(l.File)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv 用环境变量覆盖配置，优先级最高。
// 变量名与字段一一对应，便于容器化部署时不落盘凭据。
func applyEnv(cfg *ServiceConfig) {
	set := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set("ADVISOR_LISTEN_ADDR", &cfg.ListenAddr)
	set("ADVISOR_SALES_EMAIL", &cfg.SalesEmail)
	set("ADVISOR_SMTP_HOST", &cfg.SMTP.Host)
	set("ADVISOR_SMTP_USERNAME", &cfg.SMTP.Username)
	set("ADVISOR_SMTP_PASSWORD", &cfg.SMTP.Password)
	set("ADVISOR_SMTP_FROM", &cfg.SMTP.From)
	if v := strings.TrimSpace(os.Getenv("ADVISOR_SMTP_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.SMTP.Port = port
		}
	}
}

func validate(cfg ServiceConfig) error {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return errors.New("config: listen_addr is required")
	}
	if _, err := mail.ParseAddress(cfg.SalesEmail); err != nil {
		return fmt.Errorf("config: invalid sales_email %q: %w", cfg.SalesEmail, err)
	}
	if strings.TrimSpace(cfg.SMTP.Host) == "" {
		return errors.New("config: smtp.host is required")
	}
	if cfg.SMTP.Port <= 0 || cfg.SMTP.Port > 65535 {
		return fmt.Errorf("config: invalid smtp.port %d", cfg.SMTP.Port)
	}
	if _, err := mail.ParseAddress(cfg.SMTP.From); err != nil {
		return fmt.Errorf("config: invalid smtp.from %q: %w", cfg.SMTP.From, err)
	}
	return validatePricing(cfg.Pricing)
}

// validatePricing 检查价目表：允许 0（表示该服务不报价），不允许负数。
func validatePricing(p model.Pricing) error {
	entries := []struct {
		name  string
		value float64
	}{
		{"battery_service", p.BatteryService},
		{"backup_setup", p.BackupSetup},
		{"firewall_setup", p.FirewallSetup},
		{"encryption_setup", p.EncryptionSetup},
		{"ssd_upgrade", p.SSDUpgrade},
		{"ram_upgrade_small", p.RAMUpgradeSmall},
		{"ram_upgrade_large", p.RAMUpgradeLarge},
		{"memory_tuneup", p.MemoryTuneup},
		{"login_item_cleanup", p.LoginItemCleanup},
		{"maintenance_plan", p.MaintenancePlan},
		{"replacement_consult", p.ReplacementConsult},
		{"update_service", p.UpdateService},
		{"wifi_optimization", p.WifiOptimization},
	}
	for _, e := range entries {
		if e.value < 0 {
			return fmt.Errorf("config: pricing.%s must not be negative", e.name)
		}
	}
	return nil
}
