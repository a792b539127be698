package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"mac-advisor/internal/domain/model"
)

// SalesBriefing 是面向内部销售的线索简报。
// 与客户报告相反：金额、权重、内部口径全部展示，语气不做修饰。
type SalesBriefing struct {
	Subject       string
	DateLabel     string
	CustomerEmail string
	MacModel      string
	PriorityLevel model.PriorityLevel
	SystemHealth  model.SystemHealth
	LetterGrade   string
	PriorityScore int
	CriticalCount int
	ModerateCount int
	PositiveCount int
	Opportunity   float64
	TopIssue      string   // 头号问题的内部描述
	Leads         []Lead   // 可报价服务，按规则顺序
	Findings      []string // 全部结论的内部描述，含严重级别前缀
}

// BuildSales 从评估结果构建销售简报模型。纯函数，不做 I/O。
func BuildSales(rec model.ScanRecord, a model.Analysis, customerEmail string, now time.Time) SalesBriefing {
	b := SalesBriefing{
		Subject: fmt.Sprintf("[%s] Lead: $%.0f opportunity - %s",
			a.PriorityLevel, a.Opportunity, salesModelLabel(rec)),
		DateLabel:     now.Format("2006-01-02"),
		CustomerEmail: customerEmail,
		MacModel:      strings.TrimSpace(rec.MacModel),
		PriorityLevel: a.PriorityLevel,
		SystemHealth:  a.SystemHealth,
		LetterGrade:   a.LetterGrade,
		PriorityScore: a.PriorityScore,
		CriticalCount: a.CriticalCount,
		ModerateCount: a.ModerateCount,
		PositiveCount: a.PositiveCount,
		Opportunity:   a.Opportunity,
	}

	if top := a.TopFlag(); top != nil && top.Severity != model.SeverityPositive {
		b.TopIssue = top.Internal
	}

	for _, f := range a.Flags {
		b.Findings = append(b.Findings, fmt.Sprintf("[%s] %s", f.Severity, f.Internal))
		if f.Value > 0 {
			b.Leads = append(b.Leads, Lead{
				Service: f.Upsell,
				Detail:  f.Internal,
				Value:   f.Value,
			})
		}
	}
	return b
}

func salesModelLabel(rec model.ScanRecord) string {
	if m := strings.TrimSpace(rec.MacModel); m != "" {
		return m
	}
	return "unknown model"
}

// Text 输出纯文本版简报。
func (b SalesBriefing) Text() string {
	var s strings.Builder
	fmt.Fprintf(&s, "Sales lead briefing (%s)\n", b.DateLabel)
	fmt.Fprintf(&s, "Customer: %s\n", b.CustomerEmail)
	fmt.Fprintf(&s, "Machine:  %s\n\n", orDash(b.MacModel))
	fmt.Fprintf(&s, "Priority: %s | Health: %s | Grade: %s | Score: %d\n",
		b.PriorityLevel, b.SystemHealth, b.LetterGrade, b.PriorityScore)
	fmt.Fprintf(&s, "Flags: %d critical, %d moderate, %d positive\n", b.CriticalCount, b.ModerateCount, b.PositiveCount)
	fmt.Fprintf(&s, "Opportunity total: $%.0f\n\n", b.Opportunity)

	if b.TopIssue != "" {
		fmt.Fprintf(&s, "Lead with: %s\n\n", b.TopIssue)
	}
	if len(b.Leads) > 0 {
		s.WriteString("Quotable services:\n")
		for _, l := range b.Leads {
			fmt.Fprintf(&s, "  $%-6.0f %s - %s\n", l.Value, l.Service, l.Detail)
		}
		s.WriteString("\n")
	}
	if len(b.Findings) > 0 {
		s.WriteString("All findings:\n")
		for _, f := range b.Findings {
			fmt.Fprintf(&s, "  %s\n", f)
		}
	}
	return s.String()
}

// HTML 输出 HTML 版简报。
func (b SalesBriefing) HTML() string {
	esc := html.EscapeString
	var s strings.Builder
	s.WriteString(`<div style="font-family:monospace">`)
	fmt.Fprintf(&s, "<h3>Sales lead briefing (%s)</h3>", esc(b.DateLabel))
	fmt.Fprintf(&s, "<p>Customer: %s<br>Machine: %s</p>", esc(b.CustomerEmail), esc(orDash(b.MacModel)))
	fmt.Fprintf(&s, "<p>Priority <strong>%s</strong> | Health %s | Grade %s | Score %d<br>",
		esc(string(b.PriorityLevel)), esc(string(b.SystemHealth)), esc(b.LetterGrade), b.PriorityScore)
	fmt.Fprintf(&s, "Flags: %d critical, %d moderate, %d positive<br>", b.CriticalCount, b.ModerateCount, b.PositiveCount)
	fmt.Fprintf(&s, "Opportunity total: <strong>$%.0f</strong></p>", b.Opportunity)

	if b.TopIssue != "" {
		fmt.Fprintf(&s, "<p>Lead with: %s</p>", esc(b.TopIssue))
	}
	if len(b.Leads) > 0 {
		s.WriteString("<h4>Quotable services</h4><ul>")
		for _, l := range b.Leads {
			fmt.Fprintf(&s, "<li>$%.0f %s - %s</li>", l.Value, esc(l.Service), esc(l.Detail))
		}
		s.WriteString("</ul>")
	}
	if len(b.Findings) > 0 {
		s.WriteString("<h4>All findings</h4><ul>")
		for _, f := range b.Findings {
			fmt.Fprintf(&s, "<li>%s</li>", esc(f))
		}
		s.WriteString("</ul>")
	}
	s.WriteString("</div>")
	return s.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
