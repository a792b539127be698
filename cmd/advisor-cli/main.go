package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	configadapter "mac-advisor/internal/adapters/config"
	mailadapter "mac-advisor/internal/adapters/mail"
	"mac-advisor/internal/adapters/snapshot"
	sqliteadapter "mac-advisor/internal/adapters/store/sqlite"
	"mac-advisor/internal/app"
	"mac-advisor/internal/services/diagnosis"
	"mac-advisor/internal/services/dispatch"
	"mac-advisor/internal/services/webapp"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// CLI 入口。所有子命令错误都统一输出到 stderr 并返回非 0 状态码。
func main() {
	// .env 不存在时静默跳过，环境变量覆盖见 config 包。
	_ = godotenv.Load()

	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run 是一级命令路由：migrate / config / evaluate / dispatch / serve。
func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printUsage()
		return nil
	}

	switch args[0] {
	case "migrate":
		return runMigrate(ctx, args[1:])
	case "config":
		return runConfig(ctx, args[1:])
	case "evaluate":
		return runEvaluate(ctx, args[1:])
	case "dispatch":
		return runDispatch(ctx, args[1:])
	case "serve":
		return runServe(ctx, args[1:])
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// runMigrate 执行 SQLite 迁移，确保数据库结构完整。
func runMigrate(ctx context.Context, args []string) error {
	cfg := app.DefaultConfig()

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dbPath := fs.String("db", cfg.DBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := openDB(ctx, *dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	m := sqliteadapter.NewMigrator(db)
	if err := m.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	fmt.Printf("migrations applied successfully: db=%s\n", *dbPath)
	return nil
}

// runConfig 是二级命令路由，目前支持 config validate。
func runConfig(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printConfigUsage()
		return nil
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(ctx, args[1:])
	default:
		printConfigUsage()
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}

// runConfigValidate 检查配置文件合法性并输出生效的关键项。
func runConfigValidate(ctx context.Context, args []string) error {
	defaults := app.DefaultConfig()

	fs := flag.NewFlagSet("config validate", flag.ContinueOnError)
	configPath := fs.String("config", defaults.ConfigPath, "service config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := configadapter.NewLoader(*configPath).Load(ctx)
	if err != nil {
		return err
	}

	fmt.Println("config validation passed")
	fmt.Printf("listen_addr=%s sales_email=%s smtp=%s:%d\n",
		cfg.ListenAddr, cfg.SalesEmail, cfg.SMTP.Host, cfg.SMTP.Port)
	return nil
}

// runEvaluate 对本地快照文件做一次试算，只输出评估结果，不发邮件不落库。
// 技师在柜台先跑一遍，确认结论再走正式投递。
func runEvaluate(ctx context.Context, args []string) error {
	defaults := app.DefaultConfig()

	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	snapshotPath := fs.String("snapshot", "", "snapshot file (.json or .plist, required)")
	configPath := fs.String("config", defaults.ConfigPath, "service config file")
	asJSON := fs.Bool("json", false, "print full analysis as json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*snapshotPath) == "" {
		return fmt.Errorf("--snapshot is required")
	}

	cfg, err := configadapter.NewLoader(*configPath).Load(ctx)
	if err != nil {
		return err
	}
	rec, err := snapshot.DecodeRecordFile(*snapshotPath)
	if err != nil {
		return err
	}

	a := diagnosis.NewEngine(cfg.Pricing).Evaluate(rec, time.Now())
	if *asJSON {
		return printJSON(a)
	}

	fmt.Printf("priority=%s health=%s grade=%s score=%d\n",
		a.PriorityLevel, a.SystemHealth, a.LetterGrade, a.PriorityScore)
	fmt.Printf("flags=%d (critical=%d moderate=%d info=%d positive=%d) opportunity=$%.0f\n",
		len(a.Flags), a.CriticalCount, a.ModerateCount, a.InfoCount, a.PositiveCount, a.Opportunity)
	for _, f := range a.Flags {
		fmt.Printf("  [%s] %s: %s\n", f.Severity, f.Category, f.Internal)
	}
	return nil
}

// runDispatch 对本地快照文件执行完整投递流程（评估 + 双报告邮件 + 台账）。
func runDispatch(ctx context.Context, args []string) error {
	defaults := app.DefaultConfig()

	fs := flag.NewFlagSet("dispatch", flag.ContinueOnError)
	snapshotPath := fs.String("snapshot", "", "snapshot file (.json or .plist, required)")
	email := fs.String("email", "", "customer email (required)")
	dbPath := fs.String("db", defaults.DBPath, "sqlite database path")
	configPath := fs.String("config", defaults.ConfigPath, "service config file")
	reportDir := fs.String("report-dir", defaults.ReportDir, "pdf output directory")
	withPDF := fs.Bool("pdf", false, "also generate the advisory pdf")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*snapshotPath) == "" {
		return fmt.Errorf("--snapshot is required")
	}
	if strings.TrimSpace(*email) == "" {
		return fmt.Errorf("--email is required")
	}

	cfg, err := configadapter.NewLoader(*configPath).Load(ctx)
	if err != nil {
		return err
	}
	rec, err := snapshot.DecodeRecordFile(*snapshotPath)
	if err != nil {
		return err
	}

	db, err := openDB(ctx, *dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqliteadapter.NewMigrator(db).Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	sender := mailadapter.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	svc, err := dispatch.NewService(dispatch.Options{
		Engine:     diagnosis.NewEngine(cfg.Pricing),
		Sender:     sender,
		Store:      sqliteadapter.NewStore(db),
		SalesEmail: cfg.SalesEmail,
		ReportDir:  *reportDir,
	})
	if err != nil {
		return err
	}

	res, err := svc.Process(ctx, rec, strings.TrimSpace(*email), *withPDF)
	if res != nil {
		fmt.Println("dispatch completed")
		fmt.Printf("dispatch_id=%s priority=%s health=%s grade=%s\n",
			res.DispatchID, res.Analysis.PriorityLevel, res.Analysis.SystemHealth, res.Analysis.LetterGrade)
		fmt.Printf("customer_sent=%v sales_sent=%v opportunity=$%.0f\n",
			res.CustomerSent, res.SalesSent, res.Analysis.Opportunity)
		if res.PDFPath != "" {
			fmt.Printf("pdf=%s\n", res.PDFPath)
			fmt.Printf("pdf_sha256=%s\n", res.PDFSHA256)
		}
	}
	return err
}

// runServe 启动诊断 API 服务。
func runServe(ctx context.Context, args []string) error {
	defaults := app.DefaultConfig()

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	dbPath := fs.String("db", defaults.DBPath, "sqlite database path")
	configPath := fs.String("config", defaults.ConfigPath, "service config file")
	reportDir := fs.String("report-dir", defaults.ReportDir, "pdf output directory")
	listen := fs.String("listen", "", "listen address (defaults to config listen_addr)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// 支持 Ctrl+C 优雅退出。
	sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return webapp.Run(sigCtx, webapp.Options{
		DBPath:     *dbPath,
		ConfigPath: *configPath,
		ReportDir:  *reportDir,
		ListenAddr: *listen,
	})
}

func openDB(ctx context.Context, dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// printUsage 输出一级命令帮助。
func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  advisor-cli migrate [--db data/advisor.db]")
	fmt.Println("  advisor-cli config validate [--config config/advisor.yaml]")
	fmt.Println("  advisor-cli evaluate --snapshot scan.json [--config config/advisor.yaml] [--json]")
	fmt.Println("  advisor-cli dispatch --snapshot scan.json --email customer@example.com [--db data/advisor.db] [--pdf]")
	fmt.Println("  advisor-cli serve [--listen 127.0.0.1:8686] [--db data/advisor.db] [--config config/advisor.yaml]")
}

// printConfigUsage 输出 config 子命令帮助。
func printConfigUsage() {
	fmt.Println("Usage:")
	fmt.Println("  advisor-cli config validate [--config path]")
}

func printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
