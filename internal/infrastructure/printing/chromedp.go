package printing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/erp/crm/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	a4WidthMM            = 210
	a4HeightMM           = 297
	defaultMarginMM      = 15
)

// ChromedpConfig contains configuration for the chromedp renderer
type ChromedpConfig struct {
	// ExecPath is the Chrome binary; empty lets chromedp look it up
	ExecPath string
	// RemoteURL points at an already running browser's DevTools endpoint
	RemoteURL string
	Timeout   time.Duration
	// NoSandbox is required when running as root in containers
	NoSandbox bool
	Logger    *zap.Logger
}

// ConfigFromPrinting maps application configuration
func ConfigFromPrinting(cfg config.PrintingConfig, logger *zap.Logger) *ChromedpConfig {
	return &ChromedpConfig{
		ExecPath:  cfg.ChromePath,
		Timeout:   cfg.Timeout,
		NoSandbox: true,
		Logger:    logger,
	}
}

// ChromedpRenderer renders HTML to PDF using Chrome DevTools Protocol
type ChromedpRenderer struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates the allocator. The browser starts lazily on the first render.
func NewChromedpRenderer(cfg *ChromedpConfig) *ChromedpRenderer {
	if cfg == nil {
		cfg = &ChromedpConfig{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultChromeTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromedpRenderer{config: cfg, logger: logger}
	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

// RenderPDF prints html on A4 portrait
func (r *ChromedpRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, failAt(StageInput, "HTML content is empty", nil)
	}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()
	// stop the tab when the request context ends
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	params := defaultPrintParams()
	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(params.paperWidth).
				WithPaperHeight(params.paperHeight).
				WithMarginTop(params.margin).
				WithMarginRight(params.margin).
				WithMarginBottom(params.margin).
				WithMarginLeft(params.margin).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, failAt(StageTimeout, fmt.Sprintf("PDF rendering timed out after %v", r.config.Timeout), err)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, failAt(StageBrowser, "chromedp execution failed", err)
	}
	if len(pdf) == 0 {
		return nil, failAt(StageBrowser, "generated PDF is empty", nil)
	}

	r.logger.Info("PDF rendered",
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)),
	)
	return pdf, nil
}

type printParams struct {
	paperWidth  float64
	paperHeight float64
	margin      float64
}

// Chrome expects inches
func defaultPrintParams() printParams {
	return printParams{
		paperWidth:  mmToInches(a4WidthMM),
		paperHeight: mmToInches(a4HeightMM),
		margin:      mmToInches(defaultMarginMM),
	}
}

// Close releases the browser allocator
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
