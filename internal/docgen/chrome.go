package docgen

import (
	"bytes"
	"context"
	"io"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromePDFEncoder prints the HTML rendering with headless Chrome. Each
// <section class="page"> breaks onto its own sheet through CSS.
type ChromePDFEncoder struct {
	html     *HTMLEncoder
	execPath string
}

func NewChromePDFEncoder(html *HTMLEncoder, execPath string) *ChromePDFEncoder {
	return &ChromePDFEncoder{html: html, execPath: execPath}
}

func (e *ChromePDFEncoder) Encode(ctx context.Context, doc *DocumentModel, w io.Writer) error {
	var markup bytes.Buffer
	if err := e.html.Encode(ctx, doc, &markup); err != nil {
		return err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if e.execPath != "" {
		opts = append(opts, chromedp.ExecPath(e.execPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()
	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	var out []byte
	err := chromedp.Run(cctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, markup.String()).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			out, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(doc.Geometry.Width / 72).
				WithPaperHeight(doc.Geometry.Height / 72).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func (e *ChromePDFEncoder) ContentType() string { return "application/pdf" }

func (e *ChromePDFEncoder) Extension() string { return ".pdf" }
