package webapp

import (
	"net/http"

	configadapter "mac-advisor/internal/adapters/config"
	sqliteadapter "mac-advisor/internal/adapters/store/sqlite"
	"mac-advisor/internal/platform/metrics"
	"mac-advisor/internal/services/dispatch"
)

// Server 是诊断 API 服务的运行时对象。
type Server struct {
	opts  Options
	cfg   *configadapter.ServiceConfig
	store *sqliteadapter.Store
	svc   *dispatch.Service
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/meta", s.handleMeta)
	mux.HandleFunc("/api/scan", s.handleScan)
	mux.HandleFunc("/api/scan/preview", s.handleScanPreview)
	mux.HandleFunc("/api/dispatches", s.handleDispatches)
	mux.HandleFunc("/api/dispatches/", s.handleDispatchRoutes)
	mux.Handle("/metrics", metrics.Handler())
}
