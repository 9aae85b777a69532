package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeElements(t *testing.T) {
	data := []byte(`[
		{"type":"text","x":72,"y":36,"width":144,"height":72,"rotation":15,"zIndex":2,"content":"Hello","fontFamily":"Georgia","fontSize":24,"color":"#333333","textAlign":"center"},
		{"type":"shape","x":0,"y":0,"width":288,"height":432,"color":"#FF0000","borderColor":"#00FF00","borderRadius":12},
		{"type":"image","x":10,"y":20,"width":100,"height":100,"src":"uploads/logo.png"},
		{"type":"sticker","x":1,"y":2,"width":3,"height":4}
	]`)

	elements, err := DecodeElements(data)
	require.NoError(t, err)
	require.Len(t, elements, 4)

	text := elements[0]
	assert.Equal(t, ElementText, text.Type)
	assert.Equal(t, Frame{X: 72, Y: 36, Width: 144, Height: 72, Rotation: 15, Z: 2}, text.Frame)
	require.NotNil(t, text.Text)
	assert.Equal(t, "Hello", text.Text.Content)
	assert.Equal(t, "Georgia", text.Text.FontFamily)
	assert.Equal(t, 24.0, text.Text.FontSize)
	assert.Equal(t, "center", text.Text.TextAlign)
	assert.Nil(t, text.Shape)
	assert.Nil(t, text.Image)

	shape := elements[1]
	require.NotNil(t, shape.Shape)
	assert.Equal(t, "#FF0000", shape.Shape.FillColor)
	assert.Equal(t, "#00FF00", shape.Shape.BorderColor)
	assert.Equal(t, 12.0, shape.Shape.CornerRadius)

	image := elements[2]
	require.NotNil(t, image.Image)
	assert.Equal(t, "uploads/logo.png", image.Image.Src)

	// unrecognized tag keeps its geometry but carries no variant payload
	unknown := elements[3]
	assert.Equal(t, "sticker", unknown.Type)
	assert.Nil(t, unknown.Text)
	assert.Nil(t, unknown.Shape)
	assert.Nil(t, unknown.Image)
}

func TestDecodeElements_MissingRotationDefaultsToZero(t *testing.T) {
	elements, err := DecodeElements([]byte(`[{"type":"text","x":1,"y":2,"width":3,"height":4}]`))
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, 0.0, elements[0].Frame.Rotation)
}

func TestDecodeElements_Empty(t *testing.T) {
	elements, err := DecodeElements(nil)
	require.NoError(t, err)
	assert.Nil(t, elements)
}

func TestDecodeElements_Malformed(t *testing.T) {
	_, err := DecodeElements([]byte(`{"not":"an array"}`))
	require.Error(t, err)
}
