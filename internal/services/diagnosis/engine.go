package diagnosis

import (
	"time"

	"mac-advisor/internal/domain/model"
)

// Engine 是诊断规则引擎。
// Evaluate 是纯函数：同一快照 + 同一 now 必得同一结果；无 I/O、无随机性，
// 可被任意数量的请求处理协程并发调用。
type Engine struct {
	pricing model.Pricing
}

// NewEngine 用给定价目表构造引擎。
func NewEngine(pricing model.Pricing) *Engine {
	return &Engine{pricing: pricing}
}

// Evaluate 对快照执行全部规则并聚合出 Analysis。
// now 由调用方注入：备份天龄依赖当前时间，测试需要可控时钟。
// 本函数对声明的输入域是全函数：字段缺失/畸形只会让对应规则不触发，绝不报错。
func (e *Engine) Evaluate(rec model.ScanRecord, now time.Time) model.Analysis {
	year, yearOK := ExtractYear(rec.MacModel)
	in := ruleInput{
		Rec:     &rec,
		Now:     now,
		Pricing: e.pricing,
		Year:    year,
		YearOK:  yearOK,
	}

	a := model.Analysis{
		Flags:       []model.Flag{},
		EvaluatedAt: now.Unix(),
	}
	for _, rule := range ruleSet {
		res := rule(in)
		for _, f := range res.Flags {
			a.Flags = append(a.Flags, f)
			a.PriorityScore += f.Weight
			a.Opportunity += f.Value
		}
		a.Opportunity += res.Opportunity
	}

	aggregate(&a, &rec)
	return a
}
