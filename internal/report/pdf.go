package report

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/tiptopassets/analysis-engine/internal/contracts"
)

// ChromiumPDFRenderer converts a markdown report to PDF via headless
// Chromium's print pipeline.
type ChromiumPDFRenderer struct {
	chromePath string
}

func NewChromiumPDFRenderer() *ChromiumPDFRenderer {
	return &ChromiumPDFRenderer{chromePath: detectChromePath()}
}

func (r *ChromiumPDFRenderer) Render(ctx context.Context, res contracts.AnalyzeResponse) ([]byte, error) {
	htmlDoc, err := buildHTML(res)
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, append(chromedp.DefaultExecAllocatorOptions[:], opts...)...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	var pdf []byte
	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(htmlDoc))
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			footer := `<div style="width:100%;text-align:center;font-size:9px;color:#666;padding-right:8px;">` +
				`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`
			out, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(`<div></div>`).
				WithFooterTemplate(footer).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.5).
				WithMarginBottom(0.75).
				WithMarginLeft(0.45).
				WithMarginRight(0.45).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = out
			return nil
		}),
	); err != nil {
		return nil, err
	}
	return pdf, nil
}

const reportCSS = `
body{font-family:Georgia,'Times New Roman',serif;color:#1c1917;line-height:1.5;font-size:0.9rem;}
html,body,*{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;}
body{background:#fff !important;padding:0.6rem;}
.pdf-wrap{max-width:1000px;margin:0 auto;}
.pdf-gutter{border-left:3px solid #065f46 !important;border-right:3px solid #065f46 !important;padding:0 0.65rem;}
.report-badge{display:inline-block;background:#d1fae5 !important;color:#064e3b !important;border:1px solid #6ee7b7 !important;border-radius:4px;padding:0.15rem 0.5rem;margin-right:0.4rem;font-size:0.75rem;font-weight:700;}
.report-meta{color:#44403c !important;font-size:0.8rem;margin-bottom:0.6rem;}
.report-meta strong{color:#1c1917 !important;}
.report-html table{width:100% !important;border-collapse:collapse !important;border:1px solid #a8a29e !important;font-size:0.8rem !important;}
.report-html th,.report-html td{border:1px solid #a8a29e !important;padding:0.35rem 0.45rem !important;text-align:left !important;vertical-align:top !important;}
.report-html thead th{background:#f1f5f9 !important;font-weight:700 !important;}
h2[data-page-break-before="true"]{break-before:page;page-break-before:always;}
@media print{ @page{size:auto;margin:12mm;} body{background:#fff !important;padding:0;} .pdf-wrap{max-width:none;} }
`

func buildHTML(res contracts.AnalyzeResponse) (string, error) {
	markdown := BuildMarkdown(res)

	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	contentHTML := applyPrintLayoutHooks(content.String())

	return "<!doctype html><html><head><meta charset='utf-8'><title>Property Monetization Report</title>" +
		"<style>" + reportCSS + "</style></head><body>" +
		"<div class='pdf-wrap'><div class='pdf-gutter'>" +
		"<div class='report-meta'>" + buildMetaHTML(res) + "</div>" +
		"<div class='report-badges'>" + buildBadgeHTML(res) + "</div>" +
		"<div class='report-html'>" + contentHTML + "</div>" +
		"</div></div></body></html>", nil
}

func applyPrintLayoutHooks(contentHTML string) string {
	// Start the coverage breakdown on a fresh page so per-provider lists
	// never straddle a page boundary mid-category.
	reCoverage := regexp.MustCompile(`(?i)<h2([^>]*)>\s*Provider Coverage\s*</h2>`)
	return reCoverage.ReplaceAllString(contentHTML, `<h2$1 data-page-break-before="true">Provider Coverage</h2>`)
}

func buildMetaHTML(res contracts.AnalyzeResponse) string {
	var out strings.Builder
	if res.Address != "" {
		out.WriteString("<div><strong>Property:</strong> " + html.EscapeString(res.Address) + "</div>")
	}
	out.WriteString("<div><strong>Reference:</strong> " + html.EscapeString(res.ID) + "</div>")
	out.WriteString("<div><strong>Date:</strong> " + html.EscapeString(res.CreatedAt.Format("January 2, 2006 at 3:04 PM MST")) + "</div>")
	return out.String()
}

func buildBadgeHTML(res contracts.AnalyzeResponse) string {
	var out strings.Builder
	out.WriteString("<span class='report-badge'>$" +
		html.EscapeString(fmt.Sprintf("%.0f", res.Analysis.Valuation.TotalMonthlyRevenue)) + "/month</span>")
	out.WriteString("<span class='report-badge'>" + html.EscapeString(res.ServiceAvailability) + "</span>")
	if res.FallbackUsed {
		out.WriteString("<span class='report-badge'>fallback data</span>")
	}
	return out.String()
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
