package docgen

import (
	"bytes"
	"context"
	"io"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// MarkdownEncoder converts the HTML rendering, so both formats always agree
// on content. Page boundaries are not represented.
type MarkdownEncoder struct {
	html *HTMLEncoder
	conv *converter.Converter
}

func NewMarkdownEncoder(html *HTMLEncoder) *MarkdownEncoder {
	return &MarkdownEncoder{
		html: html,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(commonmark.WithHeadingStyle("atx")),
				table.NewTablePlugin(),
			),
		),
	}
}

func (e *MarkdownEncoder) Encode(ctx context.Context, doc *DocumentModel, w io.Writer) error {
	var page bytes.Buffer
	if err := e.html.Encode(ctx, doc, &page); err != nil {
		return err
	}
	md, err := e.conv.ConvertString(page.String(), converter.WithContext(ctx))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, md+"\n")
	return err
}

func (e *MarkdownEncoder) ContentType() string { return "text/markdown; charset=utf-8" }

func (e *MarkdownEncoder) Extension() string { return ".md" }
