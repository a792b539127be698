package webapp

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	configadapter "mac-advisor/internal/adapters/config"
	mailadapter "mac-advisor/internal/adapters/mail"
	sqliteadapter "mac-advisor/internal/adapters/store/sqlite"
	"mac-advisor/internal/app"
	"mac-advisor/internal/services/diagnosis"
	"mac-advisor/internal/services/dispatch"

	_ "modernc.org/sqlite"
)

// Options 定义诊断 API 服务启动参数。
// 服务是无界面的后端：采集 Agent 上报快照，报告通过邮件送达。
type Options struct {
	DBPath     string
	ConfigPath string
	ReportDir  string
	ListenAddr string // 为空时取配置文件里的 listen_addr
}

// Run 启动诊断 API 服务：
// - 接收快照上报并完成评估 + 双报告投递
// - 提供试算、台账查询与 PDF 下载接口
func Run(ctx context.Context, opts Options) error {
	defaults := app.DefaultConfig()
	if opts.DBPath == "" {
		opts.DBPath = defaults.DBPath
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = defaults.ConfigPath
	}
	if opts.ReportDir == "" {
		opts.ReportDir = defaults.ReportDir
	}

	cfg, err := configadapter.NewLoader(opts.ConfigPath).Load(ctx)
	if err != nil {
		return err
	}
	if opts.ListenAddr == "" {
		opts.ListenAddr = cfg.ListenAddr
	}

	if err := os.MkdirAll(filepath.Dir(opts.DBPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	if err := os.MkdirAll(opts.ReportDir, 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	db, err := sql.Open("sqlite", opts.DBPath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		return fmt.Errorf("set busy_timeout: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}

	migrator := sqliteadapter.NewMigrator(db)
	if err := migrator.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	store := sqliteadapter.NewStore(db)
	sender := mailadapter.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)

	svc, err := dispatch.NewService(dispatch.Options{
		Engine:     diagnosis.NewEngine(cfg.Pricing),
		Sender:     sender,
		Store:      store,
		SalesEmail: cfg.SalesEmail,
		ReportDir:  opts.ReportDir,
	})
	if err != nil {
		return err
	}

	s := &Server{
		opts:  opts,
		cfg:   cfg,
		store: store,
		svc:   svc,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	httpServer := &http.Server{
		Addr:              opts.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Printf("advisor api listening: http://%s\n", opts.ListenAddr)
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
