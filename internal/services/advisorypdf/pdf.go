package advisorypdf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"mac-advisor/internal/domain/model"
	"mac-advisor/internal/platform/hash"
	"mac-advisor/internal/services/report"

	"github.com/phpdave11/gofpdf"
)

// 顾问 PDF 报告
//
// 给到店客户的纸质/附件版体检报告，内容与客户邮件同一套口径：
// 只有健康结论与建议，不出现金额、权重等内部信息。
// PDF 属于二进制产物，走 /api/dispatches/{id}/download 获取。

type Options struct {
	ReportDir  string
	DispatchID string
	Record     model.ScanRecord
	Analysis   model.Analysis
	Now        time.Time
}

type Result struct {
	PDFPath     string   `json:"pdf_path"`
	PDFSHA256   string   `json:"pdf_sha256"`
	Warnings    []string `json:"warnings,omitempty"`
	GeneratedAt int64    `json:"generated_at"`
}

// Generate 生成顾问 PDF 并返回落盘路径与摘要。
func Generate(opts Options) (*Result, error) {
	dir := strings.TrimSpace(opts.ReportDir)
	if dir == "" {
		return nil, fmt.Errorf("report dir is required")
	}
	dispatchID := strings.TrimSpace(opts.DispatchID)
	if dispatchID == "" {
		return nil, fmt.Errorf("dispatch id is required")
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir reports: %w", err)
	}
	pdfPath := filepath.Join(dir, fmt.Sprintf("%s_advisory_%d.pdf", dispatchID, now.Unix()))

	r := report.BuildCustomer(opts.Record, opts.Analysis, now)

	pdf, utf8OK := buildPDF(r, now)
	warnings := []string{}
	if !utf8OK {
		// 未加载到 UTF-8 字体时非 ASCII 字符会被替换为 '?'，把该事实写进 warnings。
		warnings = append(warnings, "pdf utf8 font not available; non-ascii text may be replaced with '?'")
	}
	if err := pdf.OutputFileAndClose(pdfPath); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	sum, _, err := hash.File(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("sha256 pdf: %w", err)
	}

	return &Result{
		PDFPath:     pdfPath,
		PDFSHA256:   sum,
		Warnings:    warnings,
		GeneratedAt: now.Unix(),
	}, nil
}

func buildPDF(r report.CustomerReport, now time.Time) (*gofpdf.Fpdf, bool) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 14)
	pdf.SetTitle("Mac Health Report", false)

	fontFamily, utf8OK := initPDFUnicodeFont(pdf)

	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 9, "Mac Health Report", "", 1, "L", false, 0, "")

	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", r.DateLabel), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Machine: %s", safeText(r.ModelLine, utf8OK)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	sectionTitle(pdf, fontFamily, "Overall Health")
	kv(pdf, fontFamily, utf8OK, "Status", string(r.Health))
	kv(pdf, fontFamily, utf8OK, "Grade", r.Grade)
	pdf.Ln(2)

	if len(r.Positives) > 0 {
		sectionTitle(pdf, fontFamily, "What's Working Well")
		pdf.SetFont(fontFamily, "", 10)
		pdf.SetTextColor(30, 30, 30)
		for _, p := range r.Positives {
			pdf.MultiCell(0, 5, "+ "+safeText(p, utf8OK), "", "L", false)
		}
		pdf.Ln(2)
	}

	if r.TopIssue != "" {
		sectionTitle(pdf, fontFamily, "Most Important Finding")
		pdf.SetFont(fontFamily, "", 10)
		pdf.SetTextColor(30, 30, 30)
		pdf.MultiCell(0, 5, safeText(r.TopIssue, utf8OK), "", "L", false)
		pdf.Ln(2)
	}

	if len(r.Issues) > 0 {
		sectionTitle(pdf, fontFamily, "Findings")
		for _, it := range r.Issues {
			pdf.SetFont(fontFamily, "B", 10)
			pdf.SetTextColor(20, 20, 20)
			pdf.MultiCell(0, 5, safeText(it.Title, utf8OK), "", "L", false)
			pdf.SetFont(fontFamily, "", 10)
			pdf.SetTextColor(40, 40, 40)
			pdf.MultiCell(0, 4.5, safeText(it.Detail, utf8OK), "", "L", false)
			if it.Recommendation != "" {
				pdf.MultiCell(0, 4.5, "Suggestion: "+safeText(it.Recommendation, utf8OK), "", "L", false)
			}
			pdf.Ln(1)
		}
		pdf.Ln(1)
	}

	if len(r.Notes) > 0 {
		sectionTitle(pdf, fontFamily, "Also Worth Knowing")
		pdf.SetFont(fontFamily, "", 10)
		pdf.SetTextColor(30, 30, 30)
		for _, it := range r.Notes {
			pdf.MultiCell(0, 4.5, "- "+safeText(it.Detail, utf8OK), "", "L", false)
		}
		pdf.Ln(2)
	}

	if len(r.Issues) == 0 && len(r.Notes) == 0 {
		pdf.SetFont(fontFamily, "", 10)
		pdf.SetTextColor(30, 30, 30)
		pdf.MultiCell(0, 5, "No issues found. Keep doing what you're doing.", "", "L", false)
		pdf.Ln(2)
	}

	pdf.SetFont(fontFamily, "", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(0, 4.5, "Questions about any of these findings? Bring this report to the counter or reply to the report email.", "", "L", false)

	return pdf, utf8OK
}

func sectionTitle(pdf *gofpdf.Fpdf, fontFamily string, title string) {
	pdf.SetFont(fontFamily, "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(pdf.GetX(), pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(2)
}

func kv(pdf *gofpdf.Fpdf, fontFamily string, utf8OK bool, key string, value string) {
	if strings.TrimSpace(value) == "" {
		value = "-"
	}
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(36, 5.2, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(20, 20, 20)
	pdf.MultiCell(0, 5.2, safeText(value, utf8OK), "", "L", false)
}

func safeText(s string, utf8OK bool) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.TrimSpace(s)
	if utf8OK {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 32 && r <= 126 {
			b.WriteRune(r)
		} else {
			b.WriteRune('?')
		}
	}
	return b.String()
}

// initPDFUnicodeFont 尝试加载 UTF-8 字体（TrueType），以支持非 ASCII 字符。
//
// 规则：
// 1) 如果设置了环境变量 MAC_ADVISOR_PDF_FONT，优先使用该文件路径。
// 2) 否则按常见系统字体路径探测（macOS/Windows/Linux）。
// 3) 加载失败则回退到核心字体（Helvetica），并通过 safeText() 兜底替换非 ASCII 字符。
func initPDFUnicodeFont(pdf *gofpdf.Fpdf) (family string, utf8OK bool) {
	const familyName = "unicode"
	candidates := []string{}

	if v := strings.TrimSpace(os.Getenv("MAC_ADVISOR_PDF_FONT")); v != "" {
		candidates = append(candidates, v)
	}

	switch runtime.GOOS {
	case "darwin":
		candidates = append(candidates,
			"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
			"/System/Library/Fonts/Supplemental/AppleMyungjo.ttf",
			"/System/Library/Fonts/Supplemental/AppleGothic.ttf",
			"/System/Library/Fonts/Hiragino Sans GB.ttc",
			"/System/Library/Fonts/PingFang.ttc",
		)
	case "windows":
		candidates = append(candidates,
			`C:\Windows\Fonts\arialuni.ttf`,
			`C:\Windows\Fonts\simhei.ttf`,
			`C:\Windows\Fonts\simsun.ttc`,
			`C:\Windows\Fonts\msyh.ttc`,
		)
	default:
		// Linux (best effort)
		candidates = append(candidates,
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
			"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
			"/usr/share/fonts/truetype/arphic/uming.ttc",
		)
	}

	for _, p := range candidates {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}

		pdf.AddUTF8Font(familyName, "", p)
		if pdf.Err() {
			pdf.ClearError()
			continue
		}
		pdf.AddUTF8Font(familyName, "B", p)
		if pdf.Err() {
			// bold 失败也不致命：清错后仍可用 regular
			pdf.ClearError()
		}
		return familyName, true
	}

	return "Helvetica", false
}
