package report

import (
	"strings"
	"testing"
	"time"

	"mac-advisor/internal/domain/model"
	"mac-advisor/internal/services/diagnosis"
)

var reportNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func bptr(v bool) *bool       { return &v }

func wornRecord() model.ScanRecord {
	return model.ScanRecord{
		MacModel:        "iMac15,1",
		TotalRAM:        fptr(8),
		BatteryCapacity: iptr(60),
		BatteryCycles:   iptr(1300),
		LastBackupDate:  "Never",
		FirewallEnabled: bptr(false),
	}
}

func TestBuildCustomer_TopIssueIsFirstOfHighestSeverity(t *testing.T) {
	rec := wornRecord()
	a := diagnosis.NewEngine(model.DefaultPricing()).Evaluate(rec, reportNow)

	r := BuildCustomer(rec, a, reportNow)

	// 头号问题 = 最高严重级别里规则序最靠前的一条。
	// iMac15,1 的年龄规则（规则 1）排在电池/备份之前。
	top := a.TopFlag()
	if top == nil || top.Category != model.CategoryHardwareAge {
		t.Fatalf("top flag=%+v, want Hardware Age first", top)
	}
	if r.TopIssue != top.Customer {
		t.Fatalf("TopIssue=%q, want %q", r.TopIssue, top.Customer)
	}
}

func TestBuildCustomer_NeverLeaksInternalContent(t *testing.T) {
	rec := wornRecord()
	a := diagnosis.NewEngine(model.DefaultPricing()).Evaluate(rec, reportNow)

	r := BuildCustomer(rec, a, reportNow)
	for _, out := range []string{r.Text(), r.HTML()} {
		// 客户报告不得出现金额与内部口径。
		if strings.Contains(out, "$") {
			t.Fatalf("customer report leaks pricing:\n%s", out)
		}
		if strings.Contains(out, "replacement candidate") || strings.Contains(out, "opener") {
			t.Fatalf("customer report leaks internal wording:\n%s", out)
		}
	}
}

func TestBuildCustomer_EmptyAnalysis(t *testing.T) {
	a := diagnosis.NewEngine(model.DefaultPricing()).Evaluate(model.ScanRecord{}, reportNow)

	r := BuildCustomer(model.ScanRecord{}, a, reportNow)
	if r.TopIssue != "" || len(r.Issues) != 0 {
		t.Fatalf("empty analysis should yield empty issues: %+v", r)
	}
	if !strings.Contains(r.Text(), "No issues found") {
		t.Fatalf("text should carry the all-clear line:\n%s", r.Text())
	}
	if r.ModelLine != "Your Mac" {
		t.Fatalf("ModelLine=%q, want fallback", r.ModelLine)
	}
}

func TestBuildSales_LeadsAndTotals(t *testing.T) {
	rec := wornRecord()
	a := diagnosis.NewEngine(model.DefaultPricing()).Evaluate(rec, reportNow)

	b := BuildSales(rec, a, "customer@example.com", reportNow)

	if b.Opportunity != a.Opportunity {
		t.Fatalf("opportunity=%.0f, want %.0f", b.Opportunity, a.Opportunity)
	}

	// Leads 金额之和 = 各 Flag.Value 之和；
	// 换新咨询附加额没有 Flag，所以商机总额应严格大于 Leads 之和。
	var leadSum float64
	for _, l := range b.Leads {
		if l.Service == "" {
			t.Fatalf("lead without a service label: %+v", l)
		}
		leadSum += l.Value
	}
	if leadSum >= b.Opportunity {
		t.Fatalf("lead sum %.0f should be below total %.0f (consult surcharge has no flag)", leadSum, b.Opportunity)
	}

	text := b.Text()
	for _, want := range []string{"customer@example.com", "iMac15,1", string(a.PriorityLevel), "Quotable services"} {
		if !strings.Contains(text, want) {
			t.Fatalf("sales text missing %q:\n%s", want, text)
		}
	}
}

func TestBuildSales_SubjectCarriesPriorityAndValue(t *testing.T) {
	rec := wornRecord()
	a := diagnosis.NewEngine(model.DefaultPricing()).Evaluate(rec, reportNow)

	b := BuildSales(rec, a, "c@example.com", reportNow)
	if !strings.HasPrefix(b.Subject, "["+string(a.PriorityLevel)+"]") {
		t.Fatalf("subject=%q, want priority prefix", b.Subject)
	}
	if !strings.Contains(b.Subject, "iMac15,1") {
		t.Fatalf("subject=%q, want model", b.Subject)
	}
}
