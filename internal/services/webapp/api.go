package webapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"mac-advisor/internal/adapters/snapshot"
	"mac-advisor/internal/services/dispatch"
)

// 快照体量很小（几十个标量字段），1MB 上限足够宽裕。
const maxSnapshotBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "mac-advisor",
		"time":    time.Now().Unix(),
	})
}

// handleScan 是采集 Agent 的上报入口：
// 评估快照、给客户和销售各发一封报告、落台账。
// ?pdf=true 时同时生成顾问 PDF（通过台账接口下载）。
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	env, ok := s.decodeEnvelope(w, r)
	if !ok {
		return
	}
	email := env.RecipientEmail()
	if email == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("customer email is required (email or customerEmail field)"))
		return
	}

	withPDF := parseBool(r.URL.Query().Get("pdf"), false)
	res, err := s.svc.Process(r.Context(), env.ScanRecord, email, withPDF)
	if err != nil {
		if errors.Is(err, dispatch.ErrInvalidEmail) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		// 评估已完成但投递/落盘失败：如实回 500，台账里留有记录可补发。
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"dispatch_id":    res.DispatchID,
		"priority_level": res.Analysis.PriorityLevel,
		"system_health":  res.Analysis.SystemHealth,
		"letter_grade":   res.Analysis.LetterGrade,
		"priority_score": res.Analysis.PriorityScore,
		"flag_count":     len(res.Analysis.Flags),
		"opportunity":    res.Analysis.Opportunity,
		"customer_sent":  res.CustomerSent,
		"sales_sent":     res.SalesSent,
		"pdf_path":       res.PDFPath,
	})
}

// handleScanPreview 只评估不投递：
// 技师在柜台先看一眼结论，再决定是否正式出报告。邮箱字段可以不传。
func (s *Server) handleScanPreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	env, ok := s.decodeEnvelope(w, r)
	if !ok {
		return
	}
	a := s.svc.Preview(env.ScanRecord)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"analysis": a,
	})
}

func (s *Server) handleDispatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	offset := parseInt(r.URL.Query().Get("offset"), 0)

	rows, err := s.store.ListDispatches(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	total, err := s.store.CountDispatches(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dispatches": rows,
		"total":      total,
	})
}

func (s *Server) handleDispatchRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/dispatches/")
	rest = strings.Trim(rest, "/")
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	dispatchID := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	switch action {
	case "":
		s.handleDispatchGet(w, r, dispatchID)
	case "download":
		s.handleDispatchDownload(w, r, dispatchID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *Server) handleDispatchGet(w http.ResponseWriter, r *http.Request, dispatchID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	d, err := s.store.GetDispatch(r.Context(), dispatchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if d == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("dispatch not found: %s", dispatchID))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dispatch": d})
}

// handleDispatchDownload 下载该次投递生成的顾问 PDF。
// PDF 属于二进制产物，不走 JSON 内联，必须通过本接口获取。
func (s *Server) handleDispatchDownload(w http.ResponseWriter, r *http.Request, dispatchID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	d, err := s.store.GetDispatch(r.Context(), dispatchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if d == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("dispatch not found: %s", dispatchID))
		return
	}
	if d.PDFPath == "" {
		writeError(w, http.StatusNotFound, fmt.Errorf("dispatch %s has no pdf artifact", dispatchID))
		return
	}
	if _, err := os.Stat(d.PDFPath); err != nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("pdf artifact missing on disk: %s", d.PDFPath))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dispatchID+".pdf"))
	http.ServeFile(w, r, d.PDFPath)
}

func (s *Server) decodeEnvelope(w http.ResponseWriter, r *http.Request) (*snapshot.Envelope, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSnapshotBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return nil, false
	}
	env, err := snapshot.DecodeEnvelope(body, r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return env, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{
		"error": err.Error(),
	})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseBool(s string, def bool) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return def
	}
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
