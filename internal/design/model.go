package design

import (
	"encoding/json"
	"time"
)

// Element type tags as stored in a design's elements array
const (
	ElementText  = "text"
	ElementShape = "shape"
	ElementImage = "image"
)

// Frame is the geometry every element carries, in source units (72 per inch)
type Frame struct {
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64 // degrees, about the element center
	Z        int     // paint order, lower painted first
}

// TextProps holds the text variant fields
type TextProps struct {
	Content    string
	FontFamily string
	FontSize   float64
	Color      string
	TextAlign  string
}

// ShapeProps holds the shape variant fields
type ShapeProps struct {
	FillColor    string
	BorderColor  string
	CornerRadius float64
}

// ImageProps holds the image variant fields
type ImageProps struct {
	Src string
}

// Element is a tagged union over the design element variants. Exactly one of
// Text/Shape/Image is set when Type matches a known tag; an unrecognized tag
// leaves all three nil and the element degrades to an empty box downstream.
type Element struct {
	Type  string
	Frame Frame
	Text  *TextProps
	Shape *ShapeProps
	Image *ImageProps
}

// rawElement mirrors the flat JSON the editor persists
type rawElement struct {
	Type         string   `json:"type"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	Width        float64  `json:"width"`
	Height       float64  `json:"height"`
	Rotation     *float64 `json:"rotation"`
	Z            int      `json:"zIndex"`
	Content      string   `json:"content"`
	FontFamily   string   `json:"fontFamily"`
	FontSize     float64  `json:"fontSize"`
	Color        string   `json:"color"`
	TextAlign    string   `json:"textAlign"`
	BorderColor  string   `json:"borderColor"`
	BorderRadius float64  `json:"borderRadius"`
	Src          string   `json:"src"`
}

// UnmarshalJSON decodes the flat editor representation into the tagged union
func (e *Element) UnmarshalJSON(data []byte) error {
	var raw rawElement
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	rotation := 0.0
	if raw.Rotation != nil {
		rotation = *raw.Rotation
	}

	*e = Element{
		Type: raw.Type,
		Frame: Frame{
			X:        raw.X,
			Y:        raw.Y,
			Width:    raw.Width,
			Height:   raw.Height,
			Rotation: rotation,
			Z:        raw.Z,
		},
	}

	switch raw.Type {
	case ElementText:
		e.Text = &TextProps{
			Content:    raw.Content,
			FontFamily: raw.FontFamily,
			FontSize:   raw.FontSize,
			Color:      raw.Color,
			TextAlign:  raw.TextAlign,
		}
	case ElementShape:
		e.Shape = &ShapeProps{
			FillColor:    raw.Color,
			BorderColor:  raw.BorderColor,
			CornerRadius: raw.BorderRadius,
		}
	case ElementImage:
		e.Image = &ImageProps{Src: raw.Src}
	}

	return nil
}

// DecodeElements parses a design's persisted elements array
func DecodeElements(data []byte) ([]Element, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var elements []Element
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, err
	}

	return elements, nil
}

// Product describes the physical product a design targets, dimensions in inches
type Product struct {
	ID             int64   `db:"id"`
	Name           string  `db:"name"`
	FinishedWidth  float64 `db:"finished_width"`
	FinishedLength float64 `db:"finished_length"`
	Bleed          float64 `db:"bleed"`
}

// Design is the persisted source of a render, read-only for the pipeline
type Design struct {
	ID        int64           `db:"id"`
	UserID    int64           `db:"user_id"`
	ProductID int64           `db:"product_id"`
	Name      string          `db:"name"`
	Elements  json.RawMessage `db:"elements"`
	UpdatedAt time.Time       `db:"updated_at"`

	Product Product `db:"product"`
}
