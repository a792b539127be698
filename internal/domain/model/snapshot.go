package model

// ScanRecord 是采集端（技师工位上的诊断 Agent）上报的一次 Mac 体检快照。
//
// 约定：
// - 所有字段均为可选。数值与布尔字段用指针区分“缺失”与“零值”，字符串字段以空串表示缺失。
// - 缺失字段不会让评估失败，只会让依赖该字段的规则不触发（详见 diagnosis 包）。
// - 快照由外部 Agent 采集后以 JSON 或 plist 形式上报，本服务不做任何硬件探测。
type ScanRecord struct {
	// 身份信息
	MacModel     string `json:"macModel,omitempty" plist:"macModel"`         // 例如 "MacBookPro11,4" 或 "MacBook Pro (Retina, Mid 2015)"
	CPUBrand     string `json:"cpuBrand,omitempty" plist:"cpuBrand"`         // 例如 "Intel Core i7 (2015)" / "Apple M2"
	Architecture string `json:"architecture,omitempty" plist:"architecture"` // 例如 "x86_64" / "arm64"

	// 容量指标
	TotalRAM           *float64 `json:"totalRAM,omitempty" plist:"totalRAM"`                     // GB
	TotalStorageGB     *float64 `json:"totalStorage,omitempty" plist:"totalStorage"`             // GB
	FreeStorageGB      *float64 `json:"freeStorage,omitempty" plist:"freeStorage"`               // GB
	FreeStoragePercent *float64 `json:"freeStoragePercent,omitempty" plist:"freeStoragePercent"` // 0-100
	StorageType        string   `json:"storageType,omitempty" plist:"storageType"`               // 例如 "SSD" / "HDD (5400 rpm)"

	// 损耗指标
	BatteryCapacity *int `json:"batteryCapacity,omitempty" plist:"batteryCapacity"` // 设计容量百分比 0-100
	BatteryCycles   *int `json:"batteryCycles,omitempty" plist:"batteryCycles"`

	// 防护状态
	FirewallEnabled *bool  `json:"firewallEnabled,omitempty" plist:"firewallEnabled"`
	DiskEncryption  *bool  `json:"diskEncryption,omitempty" plist:"diskEncryption"`
	LastBackupDate  string `json:"lastBackupDate,omitempty" plist:"lastBackupDate"` // 时间戳字符串，或哨兵值 "Never"/"Unknown"

	// 性能与环境指标
	LoginItems           *int   `json:"loginItems,omitempty" plist:"loginItems"`
	MemoryPressure       string `json:"memoryPressure,omitempty" plist:"memoryPressure"` // "Normal" 或一组压力值
	RAMSpeedMHz          *int   `json:"ramSpeed,omitempty" plist:"ramSpeed"`
	SoftwareUpdateStatus string `json:"softwareUpdateStatus,omitempty" plist:"softwareUpdateStatus"` // "Up to date" / "Manual check required" / 数字串
	WifiSignal           string `json:"wifiSignal,omitempty" plist:"wifiSignal"`                     // "Good" / "Fair" / "Weak"
	ExternalMonitors     *int   `json:"externalMonitors,omitempty" plist:"externalMonitors"`
}
