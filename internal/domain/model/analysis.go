package model

// Severity 表示单条体检结论的严重级别。
// 用封闭枚举而不是自由字符串，避免拼写漂移导致报告模板匹配不到。
type Severity string

const (
	// SeverityCritical 需要立刻处理的问题。
	SeverityCritical Severity = "CRITICAL"
	// SeverityModerate 建议近期处理的问题。
	SeverityModerate Severity = "MODERATE"
	// SeverityInfo 不影响紧急度评分、但值得告知的事项。
	SeverityInfo Severity = "INFO"
	// SeverityPositive 正向肯定项（设备状态好的方面）。
	SeverityPositive Severity = "POSITIVE"
)

// Rank 返回严重级别的排序权值，数值越大越严重。
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityModerate:
		return 2
	case SeverityInfo:
		return 1
	case SeverityPositive:
		return 0
	default:
		return -1
	}
}

// Category 表示结论所属的固定类别集合。
type Category string

const (
	CategoryHardwareAge    Category = "Hardware Age"
	CategoryBattery        Category = "Battery"
	CategoryDataProtection Category = "Data Protection"
	CategorySecurity       Category = "Security"
	CategoryStorage        Category = "Storage"
	CategoryMemory         Category = "Memory"
	CategoryPerformance    Category = "Performance"
	CategorySoftware       Category = "Software"
	CategoryNetwork        Category = "Network"
	CategoryMaintenance    Category = "Maintenance"
	CategoryDisplay        Category = "Display"
	CategoryHardware       Category = "Hardware"
)

// Flag 是单条规则评估后产出的结构化结论。
// 创建后不再修改；在 Analysis.Flags 中按规则声明顺序排列。
type Flag struct {
	Severity       Severity `json:"severity"`
	Category       Category `json:"category"`
	Customer       string   `json:"customer"`       // 面向客户的描述
	Internal       string   `json:"internal"`       // 面向内部销售的描述
	Recommendation string   `json:"recommendation"` // 处理建议
	Upsell         string   `json:"upsell,omitempty"`
	Value          float64  `json:"value"`  // 可报价服务金额，无对应服务时为 0
	Weight         int      `json:"weight"` // 对 priority score 的贡献
}

// PriorityLevel 是销售跟进优先级。
type PriorityLevel string

const (
	PriorityCold PriorityLevel = "COLD"
	PriorityWarm PriorityLevel = "WARM"
	PriorityHot  PriorityLevel = "HOT"
)

// SystemHealth 是设备整体健康档位。
type SystemHealth string

const (
	HealthExcellent      SystemHealth = "EXCELLENT"
	HealthGood           SystemHealth = "GOOD"
	HealthModerate       SystemHealth = "MODERATE"
	HealthNeedsAttention SystemHealth = "NEEDS_ATTENTION"
	HealthCritical       SystemHealth = "CRITICAL"
)

// Analysis 是一次快照评估的完整结果。
// 每次请求独立生成，渲染并发送报告后即丢弃，不跨请求共享。
type Analysis struct {
	Flags         []Flag        `json:"flags"`
	PriorityScore int           `json:"priority_score"`
	PriorityLevel PriorityLevel `json:"priority_level"`
	SystemHealth  SystemHealth  `json:"system_health"`
	LetterGrade   string        `json:"letter_grade"`

	CriticalCount int `json:"critical_count"`
	ModerateCount int `json:"moderate_count"`
	InfoCount     int `json:"info_count"`
	PositiveCount int `json:"positive_count"`

	// Opportunity 是所有可报价服务金额之和。
	// 注意：替换咨询附加额（老设备）只进该字段、不产生 Flag，
	// 所以 Opportunity 不一定等于各 Flag.Value 之和。
	Opportunity float64 `json:"opportunity"`

	EvaluatedAt int64 `json:"evaluated_at"` // Unix 秒
}

// TopFlag 返回“头号问题”：当前最高严重级别中排位最靠前的一条。
// 排位按规则声明顺序，不按权重大小。没有任何 Flag 时返回 nil。
func (a *Analysis) TopFlag() *Flag {
	for _, sev := range []Severity{SeverityCritical, SeverityModerate, SeverityInfo, SeverityPositive} {
		for i := range a.Flags {
			if a.Flags[i].Severity == sev {
				return &a.Flags[i]
			}
		}
	}
	return nil
}

// FlagsWithSeverity 按声明顺序返回指定严重级别的所有 Flag。
func (a *Analysis) FlagsWithSeverity(sev Severity) []Flag {
	out := []Flag{}
	for _, f := range a.Flags {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}
