package model

// Pricing 是各项可报价服务的金额表（单位：本位币元）。
// 金额可通过配置文件覆盖；规则引擎只读该表，不关心币种与税。
type Pricing struct {
	BatteryService     float64 `yaml:"battery_service"`
	BackupSetup        float64 `yaml:"backup_setup"`
	FirewallSetup      float64 `yaml:"firewall_setup"`
	EncryptionSetup    float64 `yaml:"encryption_setup"`
	SSDUpgrade         float64 `yaml:"ssd_upgrade"`
	RAMUpgradeSmall    float64 `yaml:"ram_upgrade_small"` // 机器内存 ≤4GB 档
	RAMUpgradeLarge    float64 `yaml:"ram_upgrade_large"` // 机器内存 >4GB 且 ≤8GB 档
	MemoryTuneup       float64 `yaml:"memory_tuneup"`
	LoginItemCleanup   float64 `yaml:"login_item_cleanup"`
	MaintenancePlan    float64 `yaml:"maintenance_plan"`
	ReplacementConsult float64 `yaml:"replacement_consult"` // 老设备换新咨询附加额，不产生 Flag
	UpdateService      float64 `yaml:"update_service"`
	WifiOptimization   float64 `yaml:"wifi_optimization"`
}

// DefaultPricing 返回门店默认价目表。
func DefaultPricing() Pricing {
	return Pricing{
		BatteryService:     189,
		BackupSetup:        149,
		FirewallSetup:      99,
		EncryptionSetup:    79,
		SSDUpgrade:         299,
		RAMUpgradeSmall:    300,
		RAMUpgradeLarge:    200,
		MemoryTuneup:       149,
		LoginItemCleanup:   89,
		MaintenancePlan:    99,
		ReplacementConsult: 500,
		UpdateService:      79,
		WifiOptimization:   89,
	}
}
