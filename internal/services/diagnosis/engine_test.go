package diagnosis

import (
	"testing"
	"time"

	"mac-advisor/internal/domain/model"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func bptr(v bool) *bool       { return &v }

func countSeverity(a model.Analysis, sev model.Severity) int {
	n := 0
	for _, f := range a.Flags {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// 场景 A：老旧小内存 + 电池报废 + 从未备份 + 防火墙关闭。
func TestEvaluate_ScenarioWornOutMachine(t *testing.T) {
	e := NewEngine(model.DefaultPricing())
	rec := model.ScanRecord{
		TotalRAM:        fptr(4),
		BatteryCapacity: iptr(60),
		BatteryCycles:   iptr(1300),
		LastBackupDate:  "Never",
		FirewallEnabled: bptr(false),
	}

	a := e.Evaluate(rec, testNow)

	if len(a.Flags) != 4 {
		t.Fatalf("flags=%d, want 4: %+v", len(a.Flags), a.Flags)
	}
	// 电池 3 + 备份 3 + 内存(≤4GB 档) 3 + 防火墙 1
	if a.PriorityScore != 10 {
		t.Fatalf("score=%d, want 10", a.PriorityScore)
	}
	if a.CriticalCount != 3 || a.ModerateCount != 1 {
		t.Fatalf("critical=%d moderate=%d, want 3/1", a.CriticalCount, a.ModerateCount)
	}
	if a.SystemHealth != model.HealthCritical {
		t.Fatalf("health=%s, want CRITICAL", a.SystemHealth)
	}
	if a.PriorityLevel != model.PriorityHot {
		t.Fatalf("priority=%s, want HOT", a.PriorityLevel)
	}

	// 内存条目走 ≤4GB 价格档。
	var ramFlag *model.Flag
	for i := range a.Flags {
		if a.Flags[i].Upsell == "RAM Upgrade" {
			ramFlag = &a.Flags[i]
		}
	}
	if ramFlag == nil || ramFlag.Value != 300 {
		t.Fatalf("ram flag=%+v, want value 300", ramFlag)
	}
	wantOpp := 189.0 + 149 + 99 + 300
	if a.Opportunity != wantOpp {
		t.Fatalf("opportunity=%.0f, want %.0f", a.Opportunity, wantOpp)
	}
}

// 场景 B：板载内存老机型。规则 1 产出年龄/板载/独显三条，
// 规则 8 必须整条跳过——同一台机器绝不能同时出现“内存不可升级”和“建议升级内存”。
func TestEvaluate_SolderedRAMExclusivity(t *testing.T) {
	e := NewEngine(model.DefaultPricing())
	rec := model.ScanRecord{
		MacModel:     "MacBookPro11,4",
		TotalRAM:     fptr(8),
		CPUBrand:     "Intel Core i7 (2014)",
		Architecture: "x86_64",
	}

	a := e.Evaluate(rec, testNow)

	if len(a.Flags) != 4 {
		t.Fatalf("flags=%d, want 4 (age, soldered, dGPU, cpu-era): %+v", len(a.Flags), a.Flags)
	}
	memCritical := 0
	for _, f := range a.Flags {
		if f.Category == model.CategoryMemory && f.Severity == model.SeverityCritical {
			memCritical++
		}
		if f.Upsell == "RAM Upgrade" {
			t.Fatalf("soldered machine must not get a RAM upgrade quote: %+v", f)
		}
	}
	if memCritical != 1 {
		t.Fatalf("memory critical flags=%d, want exactly 1 (from the age rule)", memCritical)
	}

	// 换新咨询附加额只进商机总额，不产生 Flag。
	if a.Opportunity != model.DefaultPricing().ReplacementConsult {
		t.Fatalf("opportunity=%.0f, want consult surcharge only", a.Opportunity)
	}
}

// 场景 C：空快照是合法输入，必须得到空结果而不是报错。
func TestEvaluate_EmptyRecord(t *testing.T) {
	e := NewEngine(model.DefaultPricing())

	a := e.Evaluate(model.ScanRecord{}, testNow)

	if len(a.Flags) != 0 {
		t.Fatalf("flags=%d, want 0: %+v", len(a.Flags), a.Flags)
	}
	if a.PriorityScore != 0 || a.Opportunity != 0 {
		t.Fatalf("score=%d opportunity=%.0f, want 0/0", a.PriorityScore, a.Opportunity)
	}
	if a.SystemHealth != model.HealthGood {
		t.Fatalf("health=%s, want GOOD", a.SystemHealth)
	}
	if a.PriorityLevel != model.PriorityCold {
		t.Fatalf("priority=%s, want COLD", a.PriorityLevel)
	}
	if a.LetterGrade != "B" {
		t.Fatalf("grade=%s, want B", a.LetterGrade)
	}
}

// 场景 D：状态极佳的机器应拿到全套正向肯定与 A+。
func TestEvaluate_HealthyMachine(t *testing.T) {
	e := NewEngine(model.DefaultPricing())
	rec := model.ScanRecord{
		TotalRAM:           fptr(32),
		BatteryCapacity:    iptr(98),
		BatteryCycles:      iptr(100),
		LastBackupDate:     testNow.Add(-3 * 24 * time.Hour).Format(time.RFC3339),
		ExternalMonitors:   iptr(1),
		FreeStoragePercent: fptr(60),
	}

	a := e.Evaluate(rec, testNow)

	if a.CriticalCount != 0 || a.ModerateCount != 0 {
		t.Fatalf("critical=%d moderate=%d, want 0/0", a.CriticalCount, a.ModerateCount)
	}
	if got := countSeverity(a, model.SeverityPositive); got < 4 {
		t.Fatalf("positive flags=%d, want >=4", got)
	}
	if a.SystemHealth != model.HealthExcellent {
		t.Fatalf("health=%s, want EXCELLENT", a.SystemHealth)
	}
	if a.LetterGrade != "A+" {
		t.Fatalf("grade=%s, want A+", a.LetterGrade)
	}
	if a.Opportunity != 0 {
		t.Fatalf("opportunity=%.0f, want 0", a.Opportunity)
	}
}

// 加密关闭是 INFO 级：不进评分、照进商机。
func TestEvaluate_EncryptionInfoCarriesValueNotWeight(t *testing.T) {
	e := NewEngine(model.DefaultPricing())
	a := e.Evaluate(model.ScanRecord{DiskEncryption: bptr(false)}, testNow)

	if len(a.Flags) != 1 || a.Flags[0].Severity != model.SeverityInfo {
		t.Fatalf("flags=%+v, want single INFO flag", a.Flags)
	}
	if a.PriorityScore != 0 {
		t.Fatalf("score=%d, want 0", a.PriorityScore)
	}
	if a.Opportunity != model.DefaultPricing().EncryptionSetup {
		t.Fatalf("opportunity=%.0f, want encryption setup price", a.Opportunity)
	}
}

// 备份天龄增大时严重级别单调恶化：POSITIVE → 无 → MODERATE → CRITICAL。
func TestEvaluate_BackupAgeMonotonicity(t *testing.T) {
	e := NewEngine(model.DefaultPricing())

	backupAt := func(days int) string {
		return testNow.Add(-time.Duration(days) * 24 * time.Hour).Format(time.RFC3339)
	}
	backupSeverity := func(days int) string {
		a := e.Evaluate(model.ScanRecord{LastBackupDate: backupAt(days)}, testNow)
		for _, f := range a.Flags {
			if f.Category != model.CategoryDataProtection {
				continue
			}
			return string(f.Severity)
		}
		return "none"
	}

	cases := []struct {
		days int
		want string
	}{
		{3, "POSITIVE"},
		{7, "POSITIVE"},
		{20, "none"},
		{30, "none"},
		{45, "MODERATE"},
		{90, "MODERATE"},
		{91, "CRITICAL"},
		{180, "CRITICAL"},
	}
	for _, c := range cases {
		if got := backupSeverity(c.days); got != c.want {
			t.Fatalf("backup age %d days: severity=%s, want %s", c.days, got, c.want)
		}
	}
}

// 规则评估顺序只决定 Flag 排列，不得影响总分、计数与商机总额。
func TestEvaluate_ScoreIsOrderIndependent(t *testing.T) {
	rec := model.ScanRecord{
		MacModel:           "iMac15,1",
		TotalRAM:           fptr(8),
		BatteryCapacity:    iptr(75),
		BatteryCycles:      iptr(900),
		LastBackupDate:     "Never",
		FirewallEnabled:    bptr(false),
		DiskEncryption:     bptr(false),
		FreeStoragePercent: fptr(15),
		StorageType:        "HDD (7200 rpm)",
		LoginItems:         iptr(25),
	}

	pricing := model.DefaultPricing()
	year, yearOK := ExtractYear(rec.MacModel)
	in := ruleInput{Rec: &rec, Now: testNow, Pricing: pricing, Year: year, YearOK: yearOK}

	fold := func(rules []ruleFunc) (score int, flags int, opp float64) {
		for _, rule := range rules {
			res := rule(in)
			for _, f := range res.Flags {
				score += f.Weight
				opp += f.Value
				flags++
			}
			opp += res.Opportunity
		}
		return score, flags, opp
	}

	reversed := make([]ruleFunc, len(ruleSet))
	for i, r := range ruleSet {
		reversed[len(ruleSet)-1-i] = r
	}

	s1, f1, o1 := fold(ruleSet)
	s2, f2, o2 := fold(reversed)
	if s1 != s2 || f1 != f2 || o1 != o2 {
		t.Fatalf("order dependence: (%d,%d,%.0f) vs (%d,%d,%.0f)", s1, f1, o1, s2, f2, o2)
	}

	// 与引擎结果交叉验证。
	a := NewEngine(pricing).Evaluate(rec, testNow)
	if a.PriorityScore != s1 || len(a.Flags) != f1 || a.Opportunity != o1 {
		t.Fatalf("engine disagrees with fold: score %d vs %d, flags %d vs %d, opp %.0f vs %.0f",
			a.PriorityScore, s1, len(a.Flags), f1, a.Opportunity, o1)
	}
}

// 缺字段 = 条件不适用：逐个单字段快照不得触发依赖其他字段的规则。
func TestEvaluate_MissingFieldsNeverFire(t *testing.T) {
	e := NewEngine(model.DefaultPricing())

	cases := []struct {
		name string
		rec  model.ScanRecord
	}{
		{"battery capacity alone", model.ScanRecord{BatteryCapacity: iptr(50)}},
		{"battery cycles alone", model.ScanRecord{BatteryCycles: iptr(2000)}},
		{"unknown backup sentinel", model.ScanRecord{LastBackupDate: "Unknown"}},
		{"firewall enabled", model.ScanRecord{FirewallEnabled: bptr(true)}},
		{"pressure without ram", model.ScanRecord{MemoryPressure: "Critical"}},
		{"ram speed without arch", model.ScanRecord{RAMSpeedMHz: iptr(1600)}},
		{"update status up to date", model.ScanRecord{SoftwareUpdateStatus: "Up to date"}},
		{"wifi good", model.ScanRecord{WifiSignal: "Good"}},
	}
	for _, c := range cases {
		a := e.Evaluate(c.rec, testNow)
		if len(a.Flags) != 0 || a.PriorityScore != 0 || a.Opportunity != 0 {
			t.Fatalf("%s: flags=%d score=%d opp=%.0f, want all zero", c.name, len(a.Flags), a.PriorityScore, a.Opportunity)
		}
	}
}

// 规则 10 与规则 13 互相独立：同一快照里二者由不同哨兵值触发。
func TestEvaluate_UpdateRulesIndependent(t *testing.T) {
	e := NewEngine(model.DefaultPricing())

	a := e.Evaluate(model.ScanRecord{SoftwareUpdateStatus: "Manual check required"}, testNow)
	if len(a.Flags) != 1 || a.Flags[0].Category != model.CategoryMaintenance {
		t.Fatalf("manual sentinel: flags=%+v, want single Maintenance flag", a.Flags)
	}

	a = e.Evaluate(model.ScanRecord{SoftwareUpdateStatus: "3"}, testNow)
	if len(a.Flags) != 1 || a.Flags[0].Category != model.CategorySoftware {
		t.Fatalf("pending count: flags=%+v, want single Software flag", a.Flags)
	}
}
