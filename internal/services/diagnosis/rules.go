package diagnosis

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"mac-advisor/internal/domain/model"
)

// 规则引擎的规则集。
//
// 约定：
// - 每条规则是独立的纯函数：输入快照与派生上下文，输出零或多条 Flag 以及
//   可选的“无 Flag 商机增量”。规则之间不共享可变状态。
// - Flag 在结果中的顺序 = ruleSet 中的声明顺序。报告端“头号问题”的选取
//   依赖这个顺序（同严重级别取最靠前者），调整顺序属于行为变更。
// - 字段缺失一律视为“条件不适用”，规则直接不触发，绝不报错。

// ruleInput 是单条规则的只读输入。
type ruleInput struct {
	Rec     *model.ScanRecord
	Now     time.Time
	Pricing model.Pricing

	// 由引擎预先派生，避免每条规则重复解析型号。
	Year   int
	YearOK bool
}

// ruleResult 是单条规则的输出增量。
type ruleResult struct {
	Flags []model.Flag
	// Opportunity 是不产生 Flag 的纯商机增量（目前只有换新咨询附加额使用）。
	Opportunity float64
}

type ruleFunc func(ruleInput) ruleResult

// ruleSet 按固定顺序声明全部规则。
var ruleSet = []ruleFunc{
	ruleSystemAge,
	ruleBattery,
	ruleBackup,
	ruleFirewall,
	ruleEncryption,
	ruleFreeStorage,
	ruleStorageMedium,
	ruleRAMCapacity,
	ruleLoginItems,
	ruleSoftwareUpdateMode,
	ruleReplacementConsult,
	ruleCPUEra,
	rulePendingUpdates,
	ruleWifiSignal,
	ruleRAMSpeed,
	rulePositives,
}

// isSoldered 是规则 1 与规则 8 共用的板载内存判定：
// 机型系列命中板载表，或出厂年份 ≤2015。
func isSoldered(in ruleInput) bool {
	if IsSolderedFamily(in.Rec.MacModel) {
		return true
	}
	return in.YearOK && in.Year <= 2015
}

// ruleSystemAge 评估整机年龄（规则 1）。
// 老机器可能附带板载内存与独显两条派生结论，全部归属本规则。
func ruleSystemAge(in ruleInput) ruleResult {
	var res ruleResult
	if !in.YearOK {
		return res
	}

	switch {
	case in.Year <= 2015:
		res.Flags = append(res.Flags, model.Flag{
			Severity:       model.SeverityCritical,
			Category:       model.CategoryHardwareAge,
			Customer:       fmt.Sprintf("This Mac was manufactured in %d and is past Apple's typical support window.", in.Year),
			Internal:       fmt.Sprintf("System year %d (<=2015): prime replacement candidate.", in.Year),
			Recommendation: "Discuss replacement or trade-in options.",
			Weight:         4,
		})
		if IsSolderedFamily(in.Rec.MacModel) {
			res.Flags = append(res.Flags, model.Flag{
				Severity:       model.SeverityCritical,
				Category:       model.CategoryMemory,
				Customer:       "The memory in this model is fixed at the factory and cannot be upgraded.",
				Internal:       "Soldered RAM family: do not quote a RAM upgrade.",
				Recommendation: "Replacement is the only path to more memory.",
				Weight:         2,
			})
		}
		if isDGPUFamily(in.Rec.MacModel) {
			res.Flags = append(res.Flags, model.Flag{
				Severity:       model.SeverityModerate,
				Category:       model.CategoryHardware,
				Customer:       "This model generation has a known history of graphics chip failures.",
				Internal:       "dGPU failure-prone family: flag for inspection before any resale commitment.",
				Recommendation: "Have the discrete GPU inspected.",
				Weight:         1,
			})
		}
	case in.Year == 2016 || in.Year == 2017:
		res.Flags = append(res.Flags, model.Flag{
			Severity:       model.SeverityModerate,
			Category:       model.CategoryHardwareAge,
			Customer:       fmt.Sprintf("This Mac is from %d; plan ahead for its eventual replacement.", in.Year),
			Internal:       fmt.Sprintf("System year %d: aging but serviceable.", in.Year),
			Recommendation: "Start budgeting for a replacement within 1-2 years.",
			Weight:         2,
		})
	}
	return res
}

// ruleBattery 评估电池损耗（规则 2）。
// 容量与循环数是两个独立的损耗信号，任一越线即判级（OR 条件）。
func ruleBattery(in ruleInput) ruleResult {
	var res ruleResult
	capacity, cycles := in.Rec.BatteryCapacity, in.Rec.BatteryCycles
	if capacity == nil || cycles == nil {
		return res
	}

	switch {
	case *capacity < 70 || *cycles > 1200:
		res.Flags = append(res.Flags, model.Flag{
			Severity:       model.SeverityCritical,
			Category:       model.CategoryBattery,
			Customer:       fmt.Sprintf("The battery holds %d%% of its design capacity after %d charge cycles and should be replaced.", *capacity, *cycles),
			Internal:       fmt.Sprintf("Battery critical: capacity=%d%%, cycles=%d.", *capacity, *cycles),
			Recommendation: "Replace the battery.",
			Upsell:         "Battery Replacement",
			Value:          in.Pricing.BatteryService,
			Weight:         3,
		})
	case *capacity < 85 || *cycles > 800:
		res.Flags = append(res.Flags, model.Flag{
			Severity:       model.SeverityModerate,
			Category:       model.CategoryBattery,
			Customer:       fmt.Sprintf("The battery is showing wear (%d%% capacity, %d cycles); replacement will be due soon.", *capacity, *cycles),
			Internal:       fmt.Sprintf("Battery worn: capacity=%d%%, cycles=%d.", *capacity, *cycles),
			Recommendation: "Plan a battery replacement.",
			Upsell:         "Battery Replacement",
			Value:          in.Pricing.BatteryService,
			Weight:         2,
		})
	}
	return res
}

// ruleBackup 评估备份新鲜度（规则 3）。
// 档位：字面 "Never" 为从未备份；>90 天严重过期；>30 天需要关注；
// ≤7 天的正向肯定在 rulePositives 里给出。
// 字段缺失或 "Unknown" 不触发任何结论（空快照必须得到空结果）。
func ruleBackup(in ruleInput) ruleResult {
	var res ruleResult
	raw := strings.TrimSpace(in.Rec.LastBackupDate)
	if raw == "" || strings.EqualFold(raw, "unknown") {
		return res
	}

	if strings.EqualFold(raw, "never") {
		res.Flags = append(res.Flags, model.Flag{
			Severity:       model.SeverityCritical,
			Category:       model.CategoryDataProtection,
			Customer:       "No backup has ever been made of this Mac. A single disk failure would lose everything on it.",
			Internal:       "No backup configured: highest-stakes conversation opener.",
			Recommendation: "Set up Time Machine or a cloud backup today.",
			Upsell:         "Backup Setup",
			Value:          in.Pricing.BackupSetup,
			Weight:         3,
		})
		return res
	}

	age := BackupAgeDays(raw, in.Now)
	switch {
	case age > 90:
		res.Flags = append(res.Flags, model.Flag{
			Severity:       model.SeverityCritical,
			Category:       model.CategoryDataProtection,
			Customer:       fmt.Sprintf("The last backup is %d days old; anything changed since then is unprotected.", age),
			Internal:       fmt.Sprintf("Backup critically outdated: %d days.", age),
			Recommendation: "Run a fresh backup and automate the schedule.",
			Upsell:         "Backup Setup",
			Value:          in.Pricing.BackupSetup,
			Weight:         3,
		})
	case age > 30:
		res.Flags = append(res.Flags, model.Flag{
			Severity:       model.SeverityModerate,
			Category:       model.CategoryDataProtection,
			Customer:       fmt.Sprintf("The last backup is %d days old; a monthly-or-better cadence is recommended.", age),
			Internal:       fmt.Sprintf("Backup stale: %d days.", age),
			Recommendation: "Reconnect the backup disk or re-enable the schedule.",
			Upsell:         "Backup Setup",
			Value:          in.Pricing.BackupSetup,
			Weight:         2,
		})
	}
	return res
}

// ruleFirewall 评估防火墙开关（规则 4）。
// 严重级别固定为 MODERATE 而非 CRITICAL：macOS 默认关闭防火墙，
// 按严重问题呈现会透支客户信任，这是既定的口径降级。
func ruleFirewall(in ruleInput) ruleResult {
	var res ruleResult
	if in.Rec.FirewallEnabled == nil || *in.Rec.FirewallEnabled {
		return res
	}
	res.Flags = append(res.Flags, model.Flag{
		Severity:       model.SeverityModerate,
		Category:       model.CategorySecurity,
		Customer:       "The built-in firewall is switched off.",
		Internal:       "Firewall disabled.",
		Recommendation: "Enable the macOS application firewall.",
		Upsell:         "Security Setup",
		Value:          in.Pricing.FirewallSetup,
		Weight:         1,
	})
	return res
}

// ruleEncryption 评估全盘加密（规则 5）。
// INFO 级：不计入紧急度评分，但加密开通服务照常计入商机总额。
func ruleEncryption(in ruleInput) ruleResult {
	var res ruleResult
	if in.Rec.DiskEncryption == nil || *in.Rec.DiskEncryption {
		return res
	}
	res.Flags = append(res.Flags, model.Flag{
		Severity:       model.SeverityInfo,
		Category:       model.CategorySecurity,
		Customer:       "FileVault disk encryption is not turned on; data on a lost or stolen machine would be readable.",
		Internal:       "FileVault off: low-friction add-on sale.",
		Recommendation: "Enable FileVault.",
		Upsell:         "Encryption Setup",
		Value:          in.Pricing.EncryptionSetup,
		Weight:         0,
	})
	return res
}

// ruleFreeStorage 评估剩余空间占比（规则 6）。
// 纯诊断项：没有对应报价服务，严重档也只给咨询建议。
func ruleFreeStorage(in ruleInput) ruleResult {
	var res ruleResult
	pct := in.Rec.FreeStoragePercent
	if pct == nil {
		return res
	}
	switch {
	case *pct < 10:
		res.Flags = append(res.Flags, model.Flag{
			Severity:       model.SeverityCritical,
			Category:       model.CategoryStorage,
			Customer:       fmt.Sprintf("Only %.0f%% of the disk is free; macOS needs breathing room to stay stable.", *pct),
			Internal:       fmt.Sprintf("Free storage critical: %.0f%%.", *pct),
			Recommendation: "Free up disk space or move data to external storage.",
			Weight:         3,
		})
	case *pct < 20:
		res.Flags = append(res.Flags, model.Flag{
			Severity:       model.SeverityModerate,
			Category:       model.CategoryStorage,
			Customer:       fmt.Sprintf("The disk is getting full (%.0f%% free).", *pct),
			Internal:       fmt.Sprintf("Free storage low: %.0f%%.", *pct),
			Recommendation: "Review large files and clear space.",
			Weight:         2,
		})
	case *pct >= 50:
		res.Flags = append(res.Flags, model.Flag{
			Severity: model.SeverityPositive,
			Category: model.CategoryStorage,
			Customer: fmt.Sprintf("Plenty of free disk space (%.0f%%).", *pct),
			Internal: fmt.Sprintf("Free storage healthy: %.0f%%.", *pct),
		})
	}
	return res
}

// ruleStorageMedium 评估存储介质（规则 7）。
func ruleStorageMedium(in ruleInput) ruleResult {
	var res ruleResult
	if !isMechanicalDrive(in.Rec.StorageType) {
		return res
	}
	res.Flags = append(res.Flags, model.Flag{
		Severity:       model.SeverityModerate,
		Category:       model.CategoryStorage,
		Customer:       "This Mac still runs on a mechanical hard drive; an SSD is the single biggest speed upgrade available.",
		Internal:       fmt.Sprintf("Rotational drive detected (%s).", in.Rec.StorageType),
		Recommendation: "Upgrade to an SSD.",
		Upsell:         "SSD Upgrade",
		Value:          in.Pricing.SSDUpgrade,
		Weight:         2,
	})
	return res
}

// ruleRAMCapacity 评估内存容量（规则 8）。
// 板载机器整条规则跳过：内存不可升级的事实已由规则 1 给出，
// 这里再触发会变成自相矛盾的“升级建议”。
func ruleRAMCapacity(in ruleInput) ruleResult {
	var res ruleResult
	ram := in.Rec.TotalRAM
	if ram == nil || isSoldered(in) {
		return res
	}

	switch {
	case *ram <= 8:
		value := in.Pricing.RAMUpgradeLarge
		if *ram <= 4 {
			value = in.Pricing.RAMUpgradeSmall
		}
		res.Flags = append(res.Flags, model.Flag{
			Severity:       model.SeverityCritical,
			Category:       model.CategoryMemory,
			Customer:       fmt.Sprintf("%.0fGB of memory is below what current macOS versions run comfortably on.", *ram),
			Internal:       fmt.Sprintf("RAM %.0fGB (<=8GB), upgradeable chassis.", *ram),
			Recommendation: "Upgrade the memory.",
			Upsell:         "RAM Upgrade",
			Value:          value,
			Weight:         3,
		})
	case *ram < 16 && isElevatedPressure(in.Rec.MemoryPressure):
		res.Flags = append(res.Flags, model.Flag{
			Severity:       model.SeverityModerate,
			Category:       model.CategoryMemory,
			Customer:       fmt.Sprintf("Memory pressure is elevated (%s) on %.0fGB; more RAM would smooth things out.", in.Rec.MemoryPressure, *ram),
			Internal:       fmt.Sprintf("RAM %.0fGB with %s pressure.", *ram, in.Rec.MemoryPressure),
			Recommendation: "Add memory or reduce concurrent workloads.",
			Upsell:         "Memory Tune-up",
			Value:          in.Pricing.MemoryTuneup,
			Weight:         2,
		})
	case *ram >= 16 && strings.EqualFold(strings.TrimSpace(in.Rec.MemoryPressure), "Normal"):
		res.Flags = append(res.Flags, model.Flag{
			Severity: model.SeverityPositive,
			Category: model.CategoryMemory,
			Customer: fmt.Sprintf("%.0fGB of memory with normal pressure: well-provisioned.", *ram),
			Internal: fmt.Sprintf("RAM %.0fGB, pressure normal.", *ram),
		})
	}
	return res
}

// ruleLoginItems 评估开机自启项数量（规则 9）。
func ruleLoginItems(in ruleInput) ruleResult {
	var res ruleResult
	if in.Rec.LoginItems == nil || *in.Rec.LoginItems <= 20 {
		return res
	}
	res.Flags = append(res.Flags, model.Flag{
		Severity:       model.SeverityModerate,
		Category:       model.CategoryPerformance,
		Customer:       fmt.Sprintf("%d apps launch automatically at startup, which slows login and eats memory.", *in.Rec.LoginItems),
		Internal:       fmt.Sprintf("Login items: %d (>20).", *in.Rec.LoginItems),
		Recommendation: "Trim the login items list.",
		Upsell:         "Startup Cleanup",
		Value:          in.Pricing.LoginItemCleanup,
		Weight:         1,
	})
	return res
}

// softwareUpdateManualSentinel 是采集端在“自动更新被关掉”时上报的固定串。
const softwareUpdateManualSentinel = "Manual check required"

// ruleSoftwareUpdateMode 评估更新配置（规则 10）。
// 与规则 13（待装更新条数）相互独立，两者可同时存在于不同快照。
func ruleSoftwareUpdateMode(in ruleInput) ruleResult {
	var res ruleResult
	if strings.TrimSpace(in.Rec.SoftwareUpdateStatus) != softwareUpdateManualSentinel {
		return res
	}
	res.Flags = append(res.Flags, model.Flag{
		Severity:       model.SeverityModerate,
		Category:       model.CategoryMaintenance,
		Customer:       "Automatic software updates are turned off, so security fixes arrive only when checked by hand.",
		Internal:       "Software updates set to manual.",
		Recommendation: "Re-enable automatic updates or book a maintenance plan.",
		Upsell:         "Maintenance Plan",
		Value:          in.Pricing.MaintenancePlan,
		Weight:         1,
	})
	return res
}

// ruleReplacementConsult 是换新咨询附加额（规则 11）。
// 只累加商机、不产生 Flag：报表上不出现，但销售简报的商机总额包含它。
func ruleReplacementConsult(in ruleInput) ruleResult {
	var res ruleResult
	if in.YearOK && in.Year <= 2015 {
		res.Opportunity = in.Pricing.ReplacementConsult
	}
	return res
}

// cpuEraTokens 是 CPU 描述里标记“老 Intel 世代”的字面年份。
var cpuEraTokens = []string{"2014", "2015", "2016"}

// ruleCPUEra 是 CPU 世代复核（规则 12）。
// 这是比规则 1 更粗的二道启发式，可能与规则 1 重复计入同一事实——
// 该冗余是沿用多年的既成行为，报表端也依赖双条目呈现，不做去重。
func ruleCPUEra(in ruleInput) ruleResult {
	var res ruleResult
	if !isIntelArch(in.Rec.Architecture) {
		return res
	}
	for _, tok := range cpuEraTokens {
		if strings.Contains(in.Rec.CPUBrand, tok) {
			res.Flags = append(res.Flags, model.Flag{
				Severity:       model.SeverityCritical,
				Category:       model.CategoryHardware,
				Customer:       "The processor dates from the mid-2010s Intel era and limits what this Mac can run.",
				Internal:       fmt.Sprintf("Intel CPU era token %q in %q.", tok, in.Rec.CPUBrand),
				Recommendation: "Factor the CPU generation into any upgrade decision.",
				Weight:         2,
			})
			break
		}
	}
	return res
}

// rulePendingUpdates 评估待安装更新条数（规则 13）。
// 采集端在有待装更新时把条数作为数字串放进 softwareUpdateStatus。
func rulePendingUpdates(in ruleInput) ruleResult {
	var res ruleResult
	raw := strings.TrimSpace(in.Rec.SoftwareUpdateStatus)
	if raw == "" || raw == "Up to date" || raw == "Unknown" {
		return res
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return res
	}
	res.Flags = append(res.Flags, model.Flag{
		Severity:       model.SeverityModerate,
		Category:       model.CategorySoftware,
		Customer:       fmt.Sprintf("%d software updates are waiting to be installed.", n),
		Internal:       fmt.Sprintf("Pending updates: %d.", n),
		Recommendation: "Install the pending updates.",
		Upsell:         "Update Service",
		Value:          in.Pricing.UpdateService,
		Weight:         1,
	})
	return res
}

// ruleWifiSignal 评估 Wi-Fi 信号档位（规则 14）。
func ruleWifiSignal(in ruleInput) ruleResult {
	var res ruleResult
	sig := strings.TrimSpace(in.Rec.WifiSignal)
	if !strings.EqualFold(sig, "Weak") && !strings.EqualFold(sig, "Fair") {
		return res
	}
	res.Flags = append(res.Flags, model.Flag{
		Severity:       model.SeverityModerate,
		Category:       model.CategoryNetwork,
		Customer:       fmt.Sprintf("Wi-Fi signal at this Mac's usual spot is rated %s.", sig),
		Internal:       fmt.Sprintf("Wi-Fi signal: %s.", sig),
		Recommendation: "Reposition the router or add a mesh node.",
		Upsell:         "Wi-Fi Optimization",
		Value:          in.Pricing.WifiOptimization,
		Weight:         1,
	})
	return res
}

// ruleRAMSpeed 评估内存频率（规则 15）。
// 仅对“可换内存的 Intel 机器”有意义：板载机器换不了，Apple Silicon 无此概念。
func ruleRAMSpeed(in ruleInput) ruleResult {
	var res ruleResult
	speed := in.Rec.RAMSpeedMHz
	if speed == nil || *speed <= 0 || *speed >= 2400 {
		return res
	}
	if !isIntelArch(in.Rec.Architecture) || isSoldered(in) {
		return res
	}
	res.Flags = append(res.Flags, model.Flag{
		Severity:       model.SeverityModerate,
		Category:       model.CategoryMemory,
		Customer:       fmt.Sprintf("The memory runs at %dMHz, on the slow side for this class of machine.", *speed),
		Internal:       fmt.Sprintf("RAM speed %dMHz (<2400) on upgradeable Intel chassis.", *speed),
		Recommendation: "Consider faster memory modules at the next upgrade.",
		Weight:         1,
	})
	return res
}

// rulePositives 汇集各项正向肯定（规则 16）。
// 独立评估、从不被其他规则压制：报告需要“问题再多也先说优点”的素材。
func rulePositives(in ruleInput) ruleResult {
	var res ruleResult
	rec := in.Rec

	if rec.ExternalMonitors != nil && *rec.ExternalMonitors > 0 {
		res.Flags = append(res.Flags, model.Flag{
			Severity: model.SeverityPositive,
			Category: model.CategoryDisplay,
			Customer: fmt.Sprintf("Running %d external monitor(s): a productive setup.", *rec.ExternalMonitors),
			Internal: fmt.Sprintf("External monitors: %d.", *rec.ExternalMonitors),
		})
	}
	if rec.TotalRAM != nil && *rec.TotalRAM >= 32 {
		res.Flags = append(res.Flags, model.Flag{
			Severity: model.SeverityPositive,
			Category: model.CategoryMemory,
			Customer: fmt.Sprintf("%.0fGB of memory: generously equipped.", *rec.TotalRAM),
			Internal: fmt.Sprintf("RAM %.0fGB (>=32GB).", *rec.TotalRAM),
		})
	}
	if strings.Contains(rec.CPUBrand, "Apple M") {
		res.Flags = append(res.Flags, model.Flag{
			Severity: model.SeverityPositive,
			Category: model.CategoryHardware,
			Customer: "Apple Silicon processor: current-generation performance and efficiency.",
			Internal: fmt.Sprintf("Apple Silicon: %s.", rec.CPUBrand),
		})
	}
	if raw := strings.TrimSpace(rec.LastBackupDate); raw != "" &&
		!strings.EqualFold(raw, "never") && !strings.EqualFold(raw, "unknown") {
		if age := BackupAgeDays(raw, in.Now); age <= 7 {
			res.Flags = append(res.Flags, model.Flag{
				Severity: model.SeverityPositive,
				Category: model.CategoryDataProtection,
				Customer: "Backups are fresh (within the last week).",
				Internal: fmt.Sprintf("Backup age %d days (<=7).", age),
			})
		}
	}
	if rec.BatteryCapacity != nil && rec.BatteryCycles != nil &&
		*rec.BatteryCapacity >= 90 && *rec.BatteryCycles < 500 {
		res.Flags = append(res.Flags, model.Flag{
			Severity: model.SeverityPositive,
			Category: model.CategoryBattery,
			Customer: fmt.Sprintf("Battery in great shape: %d%% capacity at %d cycles.", *rec.BatteryCapacity, *rec.BatteryCycles),
			Internal: fmt.Sprintf("Battery healthy: %d%%/%d cycles.", *rec.BatteryCapacity, *rec.BatteryCycles),
		})
	}
	return res
}

// --- 判定辅助 ---

var elevatedPressureValues = []string{"Warn", "Warning", "Elevated", "High", "Critical"}

func isElevatedPressure(pressure string) bool {
	pressure = strings.TrimSpace(pressure)
	for _, v := range elevatedPressureValues {
		if strings.EqualFold(pressure, v) {
			return true
		}
	}
	return false
}

func isIntelArch(arch string) bool {
	arch = strings.ToLower(strings.TrimSpace(arch))
	return strings.Contains(arch, "x86") || strings.Contains(arch, "i386") || strings.Contains(arch, "intel")
}

var mechanicalDriveTokens = []string{"hdd", "rotational", "mechanical", "5400", "7200"}

func isMechanicalDrive(storageType string) bool {
	s := strings.ToLower(strings.TrimSpace(storageType))
	if s == "" {
		return false
	}
	for _, tok := range mechanicalDriveTokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
