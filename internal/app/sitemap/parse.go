package sitemap

import (
	"bytes"
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

type entry struct {
	Loc string `xml:"loc"`
}

// document покрывает и <urlset>, и <sitemapindex>: корневой элемент не проверяется
type document struct {
	XMLName  xml.Name
	URLs     []entry `xml:"url"`
	Sitemaps []entry `xml:"sitemap"`
}

// Parse извлекает адреса страниц (<url><loc>) и вложенных sitemap (<sitemap><loc>).
// Документ без таких записей возвращает ErrParseEmpty.
func Parse(data []byte) (pages, children []string, err error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil, ErrParseEmpty
		}
		return nil, nil, fmt.Errorf("decode sitemap: %w", err)
	}

	pages = locations(doc.URLs)
	children = locations(doc.Sitemaps)
	if len(pages) == 0 && len(children) == 0 {
		return nil, nil, ErrParseEmpty
	}
	return pages, children, nil
}

func locations(entries []entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if loc := strings.TrimSpace(e.Loc); loc != "" {
			out = append(out, loc)
		}
	}
	return out
}

// looksGzipped проверяет магические байты gzip
func looksGzipped(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

func gunzip(data []byte, limit int64) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(io.LimitReader(zr, limit))
}
