package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/folio/doc"
)

var fontSize = Property[float64]{Name: "size", Default: 11}

func TestGetInnermostWins(t *testing.T) {
	var c Chain
	assert.Equal(t, 11.0, Get(c, fontSize))

	outer := c.Push(fontSize.Set(12))
	inner := outer.Push(fontSize.Set(20))
	assert.Equal(t, 20.0, Get(inner, fontSize))
	assert.Equal(t, 12.0, Get(outer, fontSize), "外层链不应被修改")
	assert.Equal(t, 2, inner.Depth())
}

func TestGetIgnoresWrongType(t *testing.T) {
	c := Chain{}.Push(Map{"size": "big"})
	assert.Equal(t, 11.0, Get(c, fontSize))
}

func TestMetadataFoldsInnerFirst(t *testing.T) {
	outerLink := doc.Link{Dest: doc.URL("https://outer.example")}
	innerLink := doc.Link{Dest: doc.URL("https://inner.example")}

	c := Chain{}.
		Push(MetaData.Set([]doc.Meta{outerLink})).
		Push(Map{"size": 10.0}).
		Push(MetaData.Set([]doc.Meta{innerLink}))

	metas := c.Metadata()
	require.Len(t, metas, 2)
	assert.Equal(t, innerLink, metas[0])
	assert.Equal(t, outerLink, metas[1])

	assert.Empty(t, Chain{}.Metadata())
}

func TestPushEmptyScope(t *testing.T) {
	c := Chain{}.Push(fontSize.Set(9))
	assert.Equal(t, c.Depth(), c.Push(nil).Depth())
	assert.Equal(t, "Chain[{size}]", c.String())
}
