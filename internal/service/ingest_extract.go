package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxExtractBytes bounds how much of a single blob is read.
const maxExtractBytes = 16 << 20

// ErrUnsupportedFormat is returned for files that need an OCR service, such as PDFs.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ExtractText returns the plain text of a blob, choosing the extractor by file extension.
// Invalid UTF-8 sequences are dropped.
func ExtractText(name string, r io.Reader) (string, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".txt", ".csv":
		b, err := readLimited(r)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(toValidUTF8(b)), nil
	case ".html", ".htm":
		b, err := readLimited(r)
		if err != nil {
			return "", err
		}
		return htmlText(toValidUTF8(b)), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path.Ext(name))
	}
}

func readLimited(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxExtractBytes))
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return b, nil
}

func toValidUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return string(bytes.ToValidUTF8(b, nil))
}

// htmlText collects visible text nodes, skipping script, style and head
// content, with block elements separated by newlines.
func htmlText(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var (
		sb   strings.Builder
		skip int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseLines(sb.String())
		case html.StartTagToken:
			tn, _ := z.TagName()
			a := atom.Lookup(tn)
			if a == atom.Script || a == atom.Style || a == atom.Noscript || a == atom.Title {
				skip++
			}
			if isBlock(a) {
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			tn, _ := z.TagName()
			a := atom.Lookup(tn)
			if (a == atom.Script || a == atom.Style || a == atom.Noscript || a == atom.Title) && skip > 0 {
				skip--
			}
			if isBlock(a) {
				sb.WriteByte('\n')
			}
		case html.SelfClosingTagToken:
			tn, _ := z.TagName()
			if atom.Lookup(tn) == atom.Br {
				sb.WriteByte('\n')
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		}
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Br, atom.Li, atom.Tr, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Section, atom.Article, atom.Table, atom.Ul, atom.Ol, atom.Blockquote, atom.Pre:
		return true
	}
	return false
}

func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
