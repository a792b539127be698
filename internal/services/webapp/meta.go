package webapp

import (
	"net/http"
	"time"

	"mac-advisor/internal/app"
)

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	schemaVersion, _ := s.store.GetSchemaMetaValue(r.Context(), "schema_version")

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().Unix(),
		"app": map[string]any{
			"version":    app.Version,
			"commit":     app.Commit,
			"build_time": app.BuildTime,
		},
		"db": map[string]any{
			"schema_version": schemaVersion,
			"path":           s.opts.DBPath,
		},
		"config": map[string]any{
			"path":        s.opts.ConfigPath,
			"report_dir":  s.opts.ReportDir,
			"sales_email": s.cfg.SalesEmail,
			"smtp_host":   s.cfg.SMTP.Host,
		},
	})
}
