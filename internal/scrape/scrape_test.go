package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<div id="top"><a href="/one">One</a></div>
<table>
  <tr><td id="main1">First<br>second line</td></tr>
  <tr><td id="main2">Other</td></tr>
</table>
<a id="dl" href="/download/2">Two</a>
</body></html>`

func TestFindAllInDocumentOrder(t *testing.T) {
	doc, err := ParseString(page)
	require.NoError(t, err)

	anchors := FindAll(doc, Tag("a"))
	require.Len(t, anchors, 2)

	href, ok := Attr(anchors[1], "href")
	assert.True(t, ok)
	assert.Equal(t, "/download/2", href)
}

func TestMatchers(t *testing.T) {
	doc, err := ParseString(page)
	require.NoError(t, err)

	cells := FindAll(doc, AttrPrefix("td", "id", "main"))
	require.Len(t, cells, 2)
	assert.Equal(t, "First\nsecond line", Text(cells[0]))

	dl := FindFirst(doc, AttrEquals("a", "id", "dl"))
	require.NotNil(t, dl)
	assert.Equal(t, "Two", Text(dl))

	assert.Nil(t, FindFirst(doc, AttrEquals("a", "id", "missing")))
}

func TestAttrMissing(t *testing.T) {
	doc, err := ParseString(`<p>x</p>`)
	require.NoError(t, err)

	p := FindFirst(doc, Tag("p"))
	require.NotNil(t, p)
	_, ok := Attr(p, "class")
	assert.False(t, ok)
}
