package geometry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ThadPinch/ffp-render/internal/design"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postcard() design.Product {
	return design.Product{
		Name:           "Postcard 4x6",
		FinishedWidth:  4,
		FinishedLength: 6,
		Bleed:          0.125,
	}
}

func textElement(x, y, w, h float64) design.Element {
	return design.Element{
		Type:  design.ElementText,
		Frame: design.Frame{X: x, Y: y, Width: w, Height: h},
		Text:  &design.TextProps{Content: "Hello", FontSize: 18},
	}
}

func TestStandardDocument_PageEqualsFinishedSize(t *testing.T) {
	doc := StandardDocument("My Design", nil, postcard())

	assert.Equal(t, KindStandard, doc.Kind)
	assert.Equal(t, 4.0, doc.PageWidth)
	assert.Equal(t, 6.0, doc.PageHeight)
	assert.Nil(t, doc.TrimBox)
	assert.Nil(t, doc.BleedBox)
	assert.Empty(t, doc.CropMarks)
	assert.Empty(t, doc.Footer)
}

func TestStandardDocument_ElementPlacement(t *testing.T) {
	// One text element at (72,72) sized (144,72) on a 4"x6" product must land
	// at a 1in x 1in origin with a 2in x 1in box.
	doc := StandardDocument("My Design", []design.Element{textElement(72, 72, 144, 72)}, postcard())

	require.Len(t, doc.Elements, 1)
	el := doc.Elements[0]
	assert.Equal(t, design.ElementText, el.Type)
	assert.Equal(t, 1.0, el.X)
	assert.Equal(t, 1.0, el.Y)
	assert.Equal(t, 2.0, el.Width)
	assert.Equal(t, 1.0, el.Height)
	assert.Equal(t, 0.0, el.Rotation)
	assert.Equal(t, 0.25, el.FontSize)
}

func TestPrintReadyDocument_PageSize(t *testing.T) {
	product := postcard()
	opts := Options{CropMarkMargin: 0.125, CropMarkLength: 0.125}
	doc := PrintReadyDocument("My Design", nil, product, Metadata{}, time.Unix(0, 0).UTC(), opts)

	// finished + 2*bleed + 2*crop-mark margin on each axis
	assert.InDelta(t, 4+2*0.125+2*0.125, doc.PageWidth, 1e-9)
	assert.InDelta(t, 6+2*0.125+2*0.125, doc.PageHeight, 1e-9)

	require.NotNil(t, doc.TrimBox)
	assert.Equal(t, Rect{X: 0.25, Y: 0.25, Width: 4, Height: 6}, *doc.TrimBox)

	require.NotNil(t, doc.BleedBox)
	assert.Equal(t, Rect{X: 0.125, Y: 0.125, Width: 4.25, Height: 6.25}, *doc.BleedBox)
}

func TestPrintReadyDocument_ElementsOffsetByMargin(t *testing.T) {
	opts := Options{CropMarkMargin: 0.125}
	doc := PrintReadyDocument("My Design", []design.Element{textElement(72, 72, 144, 72)}, postcard(), Metadata{}, time.Unix(0, 0).UTC(), opts)

	require.Len(t, doc.Elements, 1)
	assert.InDelta(t, 1.125, doc.Elements[0].X, 1e-9)
	assert.InDelta(t, 1.125, doc.Elements[0].Y, 1e-9)
}

func TestPrintReadyDocument_CropMarks(t *testing.T) {
	opts := Options{CropMarkMargin: 0.125, CropMarkLength: 0.125}
	doc := PrintReadyDocument("My Design", nil, postcard(), Metadata{}, time.Unix(0, 0).UTC(), opts)

	require.Len(t, doc.CropMarks, 8)

	// top-left horizontal mark runs from the page edge to the bleed boundary
	assert.Equal(t, Segment{X1: 0, Y1: 0.125, X2: 0.125, Y2: 0.125}, doc.CropMarks[0])
	// top-left vertical mark
	assert.Equal(t, Segment{X1: 0.125, Y1: 0, X2: 0.125, Y2: 0.125}, doc.CropMarks[1])

	// every mark stays outside the bleed box
	bb := *doc.BleedBox
	for _, m := range doc.CropMarks {
		inside := m.X1 > bb.X && m.X1 < bb.X+bb.Width &&
			m.Y1 > bb.Y && m.Y1 < bb.Y+bb.Height &&
			m.X2 > bb.X && m.X2 < bb.X+bb.Width &&
			m.Y2 > bb.Y && m.Y2 < bb.Y+bb.Height
		assert.False(t, inside, "crop mark %+v must not sit inside the bleed box", m)
	}
}

func TestPrintReadyDocument_Footer(t *testing.T) {
	generatedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		meta Metadata
		want string
	}{
		{
			name: "without metadata",
			meta: Metadata{},
			want: `My Design | Postcard 4x6 | 2026-03-14 09:30 | Size: 4" x 6" | Bleed: 0.125"`,
		},
		{
			name: "with order and customer",
			meta: Metadata{OrderID: "ORD-42", CustomerName: "Acme Print Co"},
			want: `My Design | Postcard 4x6 | 2026-03-14 09:30 | Order: ORD-42 | Customer: Acme Print Co | Size: 4" x 6" | Bleed: 0.125"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := PrintReadyDocument("My Design", nil, postcard(), tt.meta, generatedAt, Options{})
			assert.Equal(t, tt.want, doc.Footer)
		})
	}
}

func TestPhysicalLayout_ZOrder(t *testing.T) {
	elements := []design.Element{
		{Type: design.ElementShape, Frame: design.Frame{Z: 2, Width: 72}, Shape: &design.ShapeProps{}},
		{Type: design.ElementText, Frame: design.Frame{Z: 0, Width: 144}, Text: &design.TextProps{}},
		{Type: design.ElementImage, Frame: design.Frame{Z: 1, Width: 216}, Image: &design.ImageProps{Src: "img.png"}},
	}

	placed := PhysicalLayout(elements, 0, 0)

	require.Len(t, placed, 3)
	assert.Equal(t, design.ElementText, placed[0].Type)
	assert.Equal(t, design.ElementImage, placed[1].Type)
	assert.Equal(t, design.ElementShape, placed[2].Type)
}

func TestPhysicalLayout_UnknownTypeDegradesToBox(t *testing.T) {
	elements := []design.Element{
		{Type: "hologram", Frame: design.Frame{X: 36, Y: 36, Width: 72, Height: 72}},
		textElement(72, 72, 144, 72),
	}

	placed := PhysicalLayout(elements, 0, 0)

	// the bad element is kept as an empty box, the rest are untouched
	require.Len(t, placed, 2)
	assert.Equal(t, "box", placed[0].Type)
	assert.Equal(t, 0.5, placed[0].X)
	assert.Equal(t, 1.0, placed[0].Width)
	assert.Equal(t, design.ElementText, placed[1].Type)
}

func TestPhysicalLayout_Defaults(t *testing.T) {
	elements := []design.Element{
		{Type: design.ElementText, Frame: design.Frame{Width: 72, Height: 72}, Text: &design.TextProps{Content: "x"}},
		{Type: design.ElementShape, Frame: design.Frame{Z: 1, Width: 72, Height: 72}, Shape: &design.ShapeProps{}},
	}

	placed := PhysicalLayout(elements, 0, 0)
	require.Len(t, placed, 2)

	text := placed[0]
	assert.Equal(t, DefaultFontFamily, text.FontFamily)
	assert.Equal(t, DefaultTextColor, text.Color)
	assert.Equal(t, DefaultTextAlign, text.TextAlign)

	shape := placed[1]
	assert.Equal(t, DefaultFillColor, shape.FillColor)
	assert.Equal(t, DefaultBorderColor, shape.BorderColor)
	assert.Equal(t, 0.0, shape.CornerRadius)
}

func TestDocuments_ArePure(t *testing.T) {
	elementsJSON := []byte(`[
		{"type":"text","x":72,"y":72,"width":144,"height":72,"zIndex":1,"content":"Hi","fontSize":12},
		{"type":"shape","x":0,"y":0,"width":288,"height":432,"color":"#FF0000","borderRadius":8},
		{"type":"image","x":10,"y":10,"width":50,"height":50,"rotation":45,"src":"logo.png"}
	]`)

	elements, err := design.DecodeElements(elementsJSON)
	require.NoError(t, err)

	product := postcard()
	generatedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	meta := Metadata{OrderID: "ORD-1"}

	first := PrintReadyDocument("My Design", elements, product, meta, generatedAt, Options{})
	second := PrintReadyDocument("My Design", elements, product, meta, generatedAt, Options{})
	assert.Equal(t, first, second)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON, "repeated calls must produce byte-identical payloads")

	stdFirst := StandardDocument("My Design", elements, product)
	stdSecond := StandardDocument("My Design", elements, product)
	assert.Equal(t, stdFirst, stdSecond)
}

func TestDocument_WireFields(t *testing.T) {
	elements, err := design.DecodeElements([]byte(`[{"type":"text","x":72,"y":0,"width":72,"height":36,"rotation":12.5,"color":"#1A2B3C","content":"wire"}]`))
	require.NoError(t, err)

	doc := StandardDocument("Wire Check", elements, postcard())
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "standard", decoded["kind"])
	assert.Equal(t, "Wire Check", decoded["design_name"])

	productBlock, ok := decoded["product"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Postcard 4x6", productBlock["name"])
	assert.Equal(t, 4.0, productBlock["width"])
	assert.Equal(t, 6.0, productBlock["length"])
	assert.Equal(t, 0.125, productBlock["bleed"])

	els, ok := decoded["elements"].([]any)
	require.True(t, ok)
	require.Len(t, els, 1)
	el := els[0].(map[string]any)
	assert.Equal(t, 12.5, el["rotation"], "rotation must round-trip as a float degree value")
	assert.Equal(t, "#1A2B3C", el["color"], "color must round-trip as a hex string")
}
