package diagnosis

import "mac-advisor/internal/domain/model"

// 档位聚合：从 Flag 计数与总分推导销售优先级、健康档位与字母评级。
//
// 三条阶梯都是“自上而下、首个命中即定档”的有序链。
// 第二、三档都给 WARM 但健康档位不同，所以不能写成独立条件。

func aggregate(a *model.Analysis, rec *model.ScanRecord) {
	for _, f := range a.Flags {
		switch f.Severity {
		case model.SeverityCritical:
			a.CriticalCount++
		case model.SeverityModerate:
			a.ModerateCount++
		case model.SeverityInfo:
			a.InfoCount++
		case model.SeverityPositive:
			a.PositiveCount++
		}
	}

	switch {
	case a.CriticalCount >= 3 || a.PriorityScore >= 8:
		a.PriorityLevel = model.PriorityHot
		a.SystemHealth = model.HealthCritical
	case a.CriticalCount >= 2 || a.PriorityScore >= 6:
		a.PriorityLevel = model.PriorityWarm
		a.SystemHealth = model.HealthNeedsAttention
	case a.CriticalCount >= 1 || a.PriorityScore >= 4:
		a.PriorityLevel = model.PriorityWarm
		a.SystemHealth = model.HealthModerate
	case a.PositiveCount >= 2 && a.ModerateCount <= 1:
		a.PriorityLevel = model.PriorityCold
		a.SystemHealth = model.HealthExcellent
	default:
		a.PriorityLevel = model.PriorityCold
		a.SystemHealth = model.HealthGood
	}

	a.LetterGrade = letterGrade(a, rec)
}

// letterGrade 推导字母评级。
// A+ 是唯一的前置特判：零问题 + 32GB 以上内存。其余自上而下首个命中即返回。
func letterGrade(a *model.Analysis, rec *model.ScanRecord) string {
	ram := 0.0
	if rec.TotalRAM != nil {
		ram = *rec.TotalRAM
	}

	if a.PriorityScore == 0 && a.CriticalCount == 0 && a.ModerateCount == 0 && ram >= 32 {
		return "A+"
	}

	switch {
	case a.PriorityScore >= 12 || a.CriticalCount >= 4:
		return "D-"
	case a.PriorityScore >= 10 || a.CriticalCount >= 3:
		return "D+"
	case a.PriorityScore >= 7 || a.CriticalCount >= 2:
		return "C-"
	case a.PriorityScore >= 5 || a.CriticalCount >= 1:
		return "C+"
	case a.PriorityScore >= 3 || a.ModerateCount >= 2:
		return "B-"
	case a.PriorityScore >= 1:
		return "B+"
	case ram >= 16:
		return "A"
	default:
		return "B"
	}
}
