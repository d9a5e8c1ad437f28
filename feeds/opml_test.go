package feeds_test

import (
	"bytes"
	"strings"
	"testing"

	"feedlog/feeds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToOPML(t *testing.T) {
	urls := []string{"https://a.com/rss", "https://b.com/atom.xml"}

	document, err := feeds.ToOPML(urls)

	require.NoError(t, err)
	assert.Contains(t, string(document), `xmlUrl="https://a.com/rss"`)
	assert.Contains(t, string(document), `xmlUrl="https://b.com/atom.xml"`)
	assert.Contains(t, string(document), `version="1.0"`)
}

func TestOPMLRoundTrip(t *testing.T) {
	urls := []string{"https://a.com/rss", "https://b.com/atom.xml"}

	document, err := feeds.ToOPML(urls)
	require.NoError(t, err)

	parsed, err := feeds.ParseOPML(bytes.NewReader(document))

	require.NoError(t, err)
	assert.Equal(t, urls, parsed)
}

func TestParseOPMLNestedOutlines(t *testing.T) {
	document := `<?xml version="1.0" encoding="UTF-8"?>
<opml version="1.0">
  <head><title>subscriptions</title></head>
  <body>
    <outline text="Tech">
      <outline type="rss" text="a" xmlUrl="https://a.com/rss" />
      <outline type="rss" text="b" xmlUrl="https://b.com/rss" />
    </outline>
    <outline type="rss" text="c" xmlUrl="https://c.com/rss" />
    <outline type="rss" text="dup" xmlUrl="https://a.com/rss" />
  </body>
</opml>`

	urls, err := feeds.ParseOPML(strings.NewReader(document))

	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.com/rss", "https://b.com/rss", "https://c.com/rss"}, urls)
}

func TestParseOPMLInvalidDocument(t *testing.T) {
	_, err := feeds.ParseOPML(strings.NewReader("not xml"))

	assert.Error(t, err)
}
