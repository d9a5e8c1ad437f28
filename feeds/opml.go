package feeds

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
)

type opmlDocument struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    opmlHead `xml:"head"`
	Body    opmlBody `xml:"body"`
}

type opmlHead struct {
	Title string `xml:"title"`
}

type opmlBody struct {
	Outlines []opmlOutline `xml:"outline"`
}

type opmlOutline struct {
	Type     string        `xml:"type,attr,omitempty"`
	Text     string        `xml:"text,attr,omitempty"`
	XMLURL   string        `xml:"xmlUrl,attr,omitempty"`
	Outlines []opmlOutline `xml:"outline,omitempty"`
}

// ToOPML renders the feed list as an OPML 1.0 subscription document.
func ToOPML(urls []string) ([]byte, error) {
	document := opmlDocument{
		Version: "1.0",
		Head:    opmlHead{Title: "feedlog"},
	}
	for _, url := range urls {
		document.Body.Outlines = append(document.Body.Outlines, opmlOutline{
			Type:   "rss",
			Text:   url,
			XMLURL: url,
		})
	}

	out, err := xml.MarshalIndent(document, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal opml: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// ParseOPML extracts the feed URLs from an OPML document, flattening
// nested outlines and dropping duplicates.
func ParseOPML(r io.Reader) ([]string, error) {
	var document opmlDocument
	if err := xml.NewDecoder(r).Decode(&document); err != nil {
		return nil, fmt.Errorf("parse opml: %w", err)
	}

	var urls []string
	var walk func(outlines []opmlOutline)
	walk = func(outlines []opmlOutline) {
		for _, outline := range outlines {
			if url := strings.TrimSpace(outline.XMLURL); url != "" {
				urls = append(urls, url)
			}
			walk(outline.Outlines)
		}
	}
	walk(document.Body.Outlines)

	return lo.Uniq(urls), nil
}
