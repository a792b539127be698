package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	mailadapter "mac-advisor/internal/adapters/mail"
	sqliteadapter "mac-advisor/internal/adapters/store/sqlite"
	"mac-advisor/internal/domain/model"
	"mac-advisor/internal/platform/id"
	"mac-advisor/internal/platform/metrics"
	"mac-advisor/internal/services/advisorypdf"
	"mac-advisor/internal/services/diagnosis"
	"mac-advisor/internal/services/report"
)

// 投递编排：评估快照 -> 生成两封报告 -> 发信 -> 落台账。
//
// 失败语义：
// - 评估与报告构建是纯函数，不会失败。
// - 任一封邮件投递失败都向上返回错误（HTTP 层回 500），
//   但台账仍然落库并如实记录 customer_sent/sales_sent，便于事后补发。
// - PDF 生成失败同样记录台账后报错，不吞错。

var ErrInvalidEmail = errors.New("invalid customer email")

// Service 是报告投递编排器。
type Service struct {
	engine     *diagnosis.Engine
	sender     mailadapter.Sender
	store      *sqliteadapter.Store
	salesEmail string
	reportDir  string
	now        func() time.Time
}

// Options 是编排器的装配参数。Now 为空时使用 time.Now。
type Options struct {
	Engine     *diagnosis.Engine
	Sender     mailadapter.Sender
	Store      *sqliteadapter.Store
	SalesEmail string
	ReportDir  string
	Now        func() time.Time
}

func NewService(opts Options) (*Service, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("dispatch: engine is required")
	}
	if opts.Sender == nil {
		return nil, fmt.Errorf("dispatch: sender is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("dispatch: store is required")
	}
	if _, err := mail.ParseAddress(opts.SalesEmail); err != nil {
		return nil, fmt.Errorf("dispatch: invalid sales email %q: %w", opts.SalesEmail, err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		engine:     opts.Engine,
		sender:     opts.Sender,
		store:      opts.Store,
		salesEmail: opts.SalesEmail,
		reportDir:  opts.ReportDir,
		now:        now,
	}, nil
}

// Result 是一次投递的结果汇总。
type Result struct {
	DispatchID   string
	Analysis     model.Analysis
	CustomerSent bool
	SalesSent    bool
	PDFPath      string
	PDFSHA256    string
}

// Preview 只评估不投递，供试算接口与 CLI 使用。
func (s *Service) Preview(rec model.ScanRecord) model.Analysis {
	a := s.engine.Evaluate(rec, s.now())
	observe(a)
	return a
}

// Process 执行完整投递流程。withPDF 控制是否同时生成顾问 PDF。
func (s *Service) Process(ctx context.Context, rec model.ScanRecord, customerEmail string, withPDF bool) (*Result, error) {
	customerEmail = strings.TrimSpace(customerEmail)
	if _, err := mail.ParseAddress(customerEmail); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, customerEmail)
	}

	now := s.now()
	a := s.engine.Evaluate(rec, now)
	observe(a)

	res := &Result{
		DispatchID: id.New("disp"),
		Analysis:   a,
	}

	var pdfErr error
	if withPDF {
		pdfRes, err := advisorypdf.Generate(advisorypdf.Options{
			ReportDir:  s.reportDir,
			DispatchID: res.DispatchID,
			Record:     rec,
			Analysis:   a,
			Now:        now,
		})
		if err != nil {
			pdfErr = fmt.Errorf("generate advisory pdf: %w", err)
		} else {
			res.PDFPath = pdfRes.PDFPath
			res.PDFSHA256 = pdfRes.PDFSHA256
		}
	}

	customer := report.BuildCustomer(rec, a, now)
	sales := report.BuildSales(rec, a, customerEmail, now)

	customerErr := s.send(ctx, "customer", mailadapter.Message{
		To:       customerEmail,
		Subject:  customer.Subject,
		TextBody: customer.Text(),
		HTMLBody: customer.HTML(),
	})
	res.CustomerSent = customerErr == nil

	salesErr := s.send(ctx, "sales", mailadapter.Message{
		To:       s.salesEmail,
		Subject:  sales.Subject,
		TextBody: sales.Text(),
		HTMLBody: sales.HTML(),
	})
	res.SalesSent = salesErr == nil

	ledgerErr := s.store.SaveDispatch(ctx, model.DispatchInfo{
		DispatchID:    res.DispatchID,
		CustomerEmail: customerEmail,
		MacModel:      strings.TrimSpace(rec.MacModel),
		PriorityLevel: string(a.PriorityLevel),
		SystemHealth:  string(a.SystemHealth),
		LetterGrade:   a.LetterGrade,
		PriorityScore: a.PriorityScore,
		CriticalCount: a.CriticalCount,
		ModerateCount: a.ModerateCount,
		PositiveCount: a.PositiveCount,
		FlagCount:     len(a.Flags),
		Opportunity:   a.Opportunity,
		CustomerSent:  res.CustomerSent,
		SalesSent:     res.SalesSent,
		PDFPath:       res.PDFPath,
		PDFSHA256:     res.PDFSHA256,
		CreatedAt:     now.Unix(),
	})

	for _, err := range []error{customerErr, salesErr, pdfErr, ledgerErr} {
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func (s *Service) send(ctx context.Context, kind string, msg mailadapter.Message) error {
	if err := s.sender.Send(ctx, msg); err != nil {
		metrics.EmailFailures.WithLabelValues(kind).Inc()
		return fmt.Errorf("send %s report: %w", kind, err)
	}
	metrics.EmailsSent.WithLabelValues(kind).Inc()
	return nil
}

func observe(a model.Analysis) {
	metrics.ScansEvaluated.WithLabelValues(string(a.PriorityLevel)).Inc()
	for _, f := range a.Flags {
		metrics.FlagsEmitted.WithLabelValues(string(f.Severity)).Inc()
	}
}
