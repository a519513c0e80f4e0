package report

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const styleCSS = `body{font-family:Georgia,serif;max-width:860px;margin:0 auto;padding:1rem;color:#1c1917;}
h1{border-bottom:2px solid #92400e;padding-bottom:0.3rem;}
h2{color:#78350f;margin-top:1.6rem;}
blockquote{background:#fef3c7;border-left:4px solid #fcd34d;margin:0;padding:0.5rem 0.8rem;}
table{width:100%;border-collapse:collapse;font-size:0.85rem;}
th,td{border:1px solid #a8a29e;padding:0.35rem 0.45rem;text-align:left;vertical-align:top;}
thead th{background:#f1f5f9;font-weight:700;}`

// BuildHTML converts a report markdown body into a standalone HTML
// document suitable for the browser or for PDF printing.
func BuildHTML(markdown string) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>Trip Safety Report</title>" +
		"<style>" + styleCSS +
		"\nhtml,body,*{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;}" +
		"\n@media print{ @page{size:auto;margin:12mm;} body{padding:0;max-width:none;} }" +
		"</style></head><body>" + content.String() + "</body></html>", nil
}
