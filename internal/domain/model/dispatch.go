package model

// DispatchInfo 是一次报告投递的台账记录（对应 dispatches 表）。
//
// 台账只记录“给谁发了什么档位的报告、产物在哪里”，
// 不保存快照原始字段，也不保存逐条 Flag——评估本身保持无状态。
type DispatchInfo struct {
	DispatchID    string  `json:"dispatch_id"`
	CustomerEmail string  `json:"customer_email"`
	MacModel      string  `json:"mac_model,omitempty"`
	PriorityLevel string  `json:"priority_level"`
	SystemHealth  string  `json:"system_health"`
	LetterGrade   string  `json:"letter_grade"`
	PriorityScore int     `json:"priority_score"`
	CriticalCount int     `json:"critical_count"`
	ModerateCount int     `json:"moderate_count"`
	PositiveCount int     `json:"positive_count"`
	FlagCount     int     `json:"flag_count"`
	Opportunity   float64 `json:"opportunity"`
	CustomerSent  bool    `json:"customer_sent"`
	SalesSent     bool    `json:"sales_sent"`
	PDFPath       string  `json:"pdf_path,omitempty"`
	PDFSHA256     string  `json:"pdf_sha256,omitempty"`
	CreatedAt     int64   `json:"created_at"`
}
