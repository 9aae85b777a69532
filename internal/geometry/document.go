// Package geometry converts a design's pixel-space element list into a
// physically accurate document description for the external render service.
// Everything here is pure: no I/O, no clock, no state. Identical inputs
// produce identical documents, which the retry path and the tests rely on.
package geometry

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ThadPinch/ffp-render/internal/design"
)

// UnitsPerInch is the fixed source unit density of element coordinates,
// decoupling designs from any particular screen resolution.
const UnitsPerInch = 72.0

// Render kinds
const (
	KindStandard   = "standard"
	KindPrintReady = "print_ready"
)

// Default styling applied when an element omits a field
const (
	DefaultFontFamily  = "Arial"
	DefaultTextColor   = "#000000"
	DefaultFillColor   = "#FFFFFF"
	DefaultBorderColor = "#000000"
	DefaultTextAlign   = "left"
)

// Options carries the print-production constants, in inches
type Options struct {
	CropMarkMargin float64
	CropMarkLength float64
}

func (o Options) withDefaults() Options {
	if o.CropMarkMargin <= 0 {
		o.CropMarkMargin = 0.125
	}
	if o.CropMarkLength <= 0 {
		o.CropMarkLength = 0.125
	}
	return o
}

// Rect is an axis-aligned rectangle, inches from the page's top-left corner
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Segment is a straight guide line, inches from the page's top-left corner
type Segment struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// ProductInfo is the product block sent to the render service
type ProductInfo struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
	Bleed  float64 `json:"bleed"`
}

// Metadata carries the optional print-ready production labels
type Metadata struct {
	OrderID      string `json:"order_id,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
}

// PlacedElement is one element converted to physical coordinates. All
// lengths are inches; rotation stays a float degree value about the center.
type PlacedElement struct {
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`

	// text
	Content    string  `json:"content,omitempty"`
	FontFamily string  `json:"font_family,omitempty"`
	FontSize   float64 `json:"font_size,omitempty"`
	Color      string  `json:"color,omitempty"`
	TextAlign  string  `json:"text_align,omitempty"`

	// shape
	FillColor    string  `json:"fill_color,omitempty"`
	BorderColor  string  `json:"border_color,omitempty"`
	CornerRadius float64 `json:"corner_radius,omitempty"`

	// image
	Src string `json:"src,omitempty"`
}

// Document is the full render payload. It owns no persistent identity and is
// derived fresh from the design's current state on every attempt.
type Document struct {
	Kind       string          `json:"kind"`
	DesignName string          `json:"design_name"`
	Product    ProductInfo     `json:"product"`
	PageWidth  float64         `json:"page_width"`
	PageHeight float64         `json:"page_height"`
	Elements   []PlacedElement `json:"elements"`
	TrimBox    *Rect           `json:"trim_box,omitempty"`
	BleedBox   *Rect           `json:"bleed_box,omitempty"`
	CropMarks  []Segment       `json:"crop_marks,omitempty"`
	Footer     string          `json:"footer,omitempty"`
	Metadata   *Metadata       `json:"metadata,omitempty"`
}

// PhysicalLayout converts elements from source units to inches, defaults the
// styling fields, and orders them for painting (lower z first, stable). An
// element with an unrecognized type tag becomes an empty box rather than an
// error: a single bad element must not fail the whole document.
func PhysicalLayout(elements []design.Element, offsetX, offsetY float64) []PlacedElement {
	ordered := make([]design.Element, len(elements))
	copy(ordered, elements)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Frame.Z < ordered[j].Frame.Z
	})

	placed := make([]PlacedElement, 0, len(ordered))
	for _, el := range ordered {
		placed = append(placed, placeElement(el, offsetX, offsetY))
	}
	return placed
}

func placeElement(el design.Element, offsetX, offsetY float64) PlacedElement {
	p := PlacedElement{
		Type:     el.Type,
		X:        el.Frame.X/UnitsPerInch + offsetX,
		Y:        el.Frame.Y/UnitsPerInch + offsetY,
		Width:    el.Frame.Width / UnitsPerInch,
		Height:   el.Frame.Height / UnitsPerInch,
		Rotation: el.Frame.Rotation,
	}

	switch {
	case el.Type == design.ElementText && el.Text != nil:
		p.Content = el.Text.Content
		p.FontFamily = defaultStr(el.Text.FontFamily, DefaultFontFamily)
		p.FontSize = el.Text.FontSize / UnitsPerInch
		p.Color = defaultStr(el.Text.Color, DefaultTextColor)
		p.TextAlign = defaultStr(el.Text.TextAlign, DefaultTextAlign)
	case el.Type == design.ElementShape && el.Shape != nil:
		p.FillColor = defaultStr(el.Shape.FillColor, DefaultFillColor)
		p.BorderColor = defaultStr(el.Shape.BorderColor, DefaultBorderColor)
		p.CornerRadius = el.Shape.CornerRadius / UnitsPerInch
	case el.Type == design.ElementImage && el.Image != nil:
		p.Src = el.Image.Src
	default:
		// Unknown tag: keep the geometry, render an empty box
		p.Type = "box"
	}

	return p
}

// StandardDocument builds a screen-accurate document: the page equals the
// product's finished size, no bleed, no crop marks.
func StandardDocument(designName string, elements []design.Element, product design.Product) Document {
	return Document{
		Kind:       KindStandard,
		DesignName: designName,
		Product:    productInfo(product),
		PageWidth:  product.FinishedWidth,
		PageHeight: product.FinishedLength,
		Elements:   PhysicalLayout(elements, 0, 0),
	}
}

// PrintReadyDocument builds a production-accurate document: the page grows by
// bleed plus the crop-mark margin on all sides, the design shifts inward by
// the margin, and trim/bleed boxes, corner crop marks, and a footer line are
// added. The generation timestamp is an input so the function stays pure.
func PrintReadyDocument(designName string, elements []design.Element, product design.Product, meta Metadata, generatedAt time.Time, opts Options) Document {
	opts = opts.withDefaults()

	margin := opts.CropMarkMargin
	bleed := product.Bleed
	bleedWidth := product.FinishedWidth + 2*bleed
	bleedHeight := product.FinishedLength + 2*bleed
	pageWidth := bleedWidth + 2*margin
	pageHeight := bleedHeight + 2*margin

	doc := Document{
		Kind:       KindPrintReady,
		DesignName: designName,
		Product:    productInfo(product),
		PageWidth:  pageWidth,
		PageHeight: pageHeight,
		Elements:   PhysicalLayout(elements, margin, margin),
		TrimBox: &Rect{
			X:      margin + bleed,
			Y:      margin + bleed,
			Width:  product.FinishedWidth,
			Height: product.FinishedLength,
		},
		BleedBox: &Rect{
			X:      margin,
			Y:      margin,
			Width:  bleedWidth,
			Height: bleedHeight,
		},
		CropMarks: cropMarks(pageWidth, pageHeight, margin, opts.CropMarkLength),
		Footer:    footerLine(designName, product, meta, generatedAt),
	}

	if meta != (Metadata{}) {
		m := meta
		doc.Metadata = &m
	}

	return doc
}

// cropMarks places eight short guide segments at the four page corners,
// aligned with the bleed boundary and kept outside it.
func cropMarks(pageWidth, pageHeight, margin, length float64) []Segment {
	return []Segment{
		// top-left
		{X1: 0, Y1: margin, X2: length, Y2: margin},
		{X1: margin, Y1: 0, X2: margin, Y2: length},
		// top-right
		{X1: pageWidth - length, Y1: margin, X2: pageWidth, Y2: margin},
		{X1: pageWidth - margin, Y1: 0, X2: pageWidth - margin, Y2: length},
		// bottom-left
		{X1: 0, Y1: pageHeight - margin, X2: length, Y2: pageHeight - margin},
		{X1: margin, Y1: pageHeight - length, X2: margin, Y2: pageHeight},
		// bottom-right
		{X1: pageWidth - length, Y1: pageHeight - margin, X2: pageWidth, Y2: pageHeight - margin},
		{X1: pageWidth - margin, Y1: pageHeight - length, X2: pageWidth - margin, Y2: pageHeight},
	}
}

// footerLine builds the single-line production annotation printed in the
// page margin: design, product, timestamp, optional order and customer
// labels, finished size, and the bleed value in inches.
func footerLine(designName string, product design.Product, meta Metadata, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString(designName)
	b.WriteString(" | ")
	b.WriteString(product.Name)
	b.WriteString(" | ")
	b.WriteString(generatedAt.Format("2006-01-02 15:04"))

	if meta.OrderID != "" {
		b.WriteString(" | Order: ")
		b.WriteString(meta.OrderID)
	}
	if meta.CustomerName != "" {
		b.WriteString(" | Customer: ")
		b.WriteString(meta.CustomerName)
	}

	b.WriteString(" | Size: ")
	b.WriteString(formatInches(product.FinishedWidth))
	b.WriteString("\" x ")
	b.WriteString(formatInches(product.FinishedLength))
	b.WriteString("\" | Bleed: ")
	b.WriteString(formatInches(product.Bleed))
	b.WriteString("\"")

	return b.String()
}

func productInfo(p design.Product) ProductInfo {
	return ProductInfo{
		Name:   p.Name,
		Width:  p.FinishedWidth,
		Length: p.FinishedLength,
		Bleed:  p.Bleed,
	}
}

func formatInches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
