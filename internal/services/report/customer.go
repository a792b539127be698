package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"mac-advisor/internal/domain/model"
)

// CustomerReport 是面向客户的顾问报告。
// 语气约定：先肯定、再说问题、每个问题带可执行建议；绝不出现内部口径与金额权重。
type CustomerReport struct {
	Subject   string
	DateLabel string
	ModelLine string
	Health    model.SystemHealth
	Grade     string
	TopIssue  string
	Issues    []Item // CRITICAL + MODERATE，按规则顺序
	Notes     []Item // INFO
	Positives []string
}

// BuildCustomer 从评估结果构建客户报告模型。纯函数，不做 I/O。
func BuildCustomer(rec model.ScanRecord, a model.Analysis, now time.Time) CustomerReport {
	r := CustomerReport{
		Subject:   fmt.Sprintf("Your Mac Health Report - Grade %s", a.LetterGrade),
		DateLabel: now.Format("January 2, 2006"),
		ModelLine: customerModelLine(rec),
		Health:    a.SystemHealth,
		Grade:     a.LetterGrade,
	}

	if top := a.TopFlag(); top != nil && top.Severity != model.SeverityPositive {
		r.TopIssue = top.Customer
	}

	for _, f := range a.Flags {
		switch f.Severity {
		case model.SeverityCritical, model.SeverityModerate:
			r.Issues = append(r.Issues, Item{
				Title:          string(f.Category),
				Detail:         f.Customer,
				Recommendation: f.Recommendation,
			})
		case model.SeverityInfo:
			r.Notes = append(r.Notes, Item{
				Title:          string(f.Category),
				Detail:         f.Customer,
				Recommendation: f.Recommendation,
			})
		case model.SeverityPositive:
			r.Positives = append(r.Positives, f.Customer)
		}
	}
	return r
}

func customerModelLine(rec model.ScanRecord) string {
	parts := []string{}
	if m := strings.TrimSpace(rec.MacModel); m != "" {
		parts = append(parts, m)
	}
	if c := strings.TrimSpace(rec.CPUBrand); c != "" {
		parts = append(parts, c)
	}
	if rec.TotalRAM != nil {
		parts = append(parts, fmt.Sprintf("%.0fGB RAM", *rec.TotalRAM))
	}
	if len(parts) == 0 {
		return "Your Mac"
	}
	return strings.Join(parts, " / ")
}

// Text 输出纯文本版报告（邮件 text/plain 部分）。
func (r CustomerReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mac Health Report - %s\n", r.DateLabel)
	fmt.Fprintf(&b, "%s\n\n", r.ModelLine)
	fmt.Fprintf(&b, "Overall health: %s (grade %s)\n\n", r.Health, r.Grade)

	if len(r.Positives) > 0 {
		b.WriteString("What's working well:\n")
		for _, p := range r.Positives {
			fmt.Fprintf(&b, "  + %s\n", p)
		}
		b.WriteString("\n")
	}
	if r.TopIssue != "" {
		fmt.Fprintf(&b, "Most important finding: %s\n\n", r.TopIssue)
	}
	if len(r.Issues) > 0 {
		b.WriteString("Findings:\n")
		for _, it := range r.Issues {
			fmt.Fprintf(&b, "  - [%s] %s\n", it.Title, it.Detail)
			if it.Recommendation != "" {
				fmt.Fprintf(&b, "    Suggestion: %s\n", it.Recommendation)
			}
		}
		b.WriteString("\n")
	}
	if len(r.Notes) > 0 {
		b.WriteString("Also worth knowing:\n")
		for _, it := range r.Notes {
			fmt.Fprintf(&b, "  - %s\n", it.Detail)
		}
		b.WriteString("\n")
	}
	if len(r.Issues) == 0 && len(r.Notes) == 0 {
		b.WriteString("No issues found. Keep doing what you're doing.\n\n")
	}
	b.WriteString("Questions? Just reply to this email.\n")
	return b.String()
}

// HTML 输出 HTML 版报告（邮件 text/html 部分）。
func (r CustomerReport) HTML() string {
	esc := html.EscapeString
	var b strings.Builder
	b.WriteString(`<div style="font-family:sans-serif;max-width:640px">`)
	fmt.Fprintf(&b, "<h2>Mac Health Report</h2><p>%s &middot; %s</p>", esc(r.DateLabel), esc(r.ModelLine))
	fmt.Fprintf(&b, "<p><strong>Overall health:</strong> %s (grade %s)</p>", esc(string(r.Health)), esc(r.Grade))

	if len(r.Positives) > 0 {
		b.WriteString("<h3>What's working well</h3><ul>")
		for _, p := range r.Positives {
			fmt.Fprintf(&b, "<li>%s</li>", esc(p))
		}
		b.WriteString("</ul>")
	}
	if r.TopIssue != "" {
		fmt.Fprintf(&b, "<p><strong>Most important finding:</strong> %s</p>", esc(r.TopIssue))
	}
	if len(r.Issues) > 0 {
		b.WriteString("<h3>Findings</h3><ul>")
		for _, it := range r.Issues {
			fmt.Fprintf(&b, "<li><strong>%s:</strong> %s", esc(it.Title), esc(it.Detail))
			if it.Recommendation != "" {
				fmt.Fprintf(&b, "<br><em>Suggestion: %s</em>", esc(it.Recommendation))
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
	}
	if len(r.Notes) > 0 {
		b.WriteString("<h3>Also worth knowing</h3><ul>")
		for _, it := range r.Notes {
			fmt.Fprintf(&b, "<li>%s</li>", esc(it.Detail))
		}
		b.WriteString("</ul>")
	}
	if len(r.Issues) == 0 && len(r.Notes) == 0 {
		b.WriteString("<p>No issues found. Keep doing what you're doing.</p>")
	}
	b.WriteString("<p>Questions? Just reply to this email.</p></div>")
	return b.String()
}
