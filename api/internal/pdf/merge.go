// Package pdf merges question photos into one multi-page document.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // decoders for re-encoding
	"image/jpeg"
	_ "image/png"

	"github.com/go-pdf/fpdf"
)

// ErrNoImages is returned when none of the inputs could be decoded.
var ErrNoImages = errors.New("pdf: no usable images")

// pixels are laid out at 96 dpi
const ptPerPixel = 72.0 / 96.0

type page struct {
	jpeg   []byte
	width  float64
	height float64
}

// Merge puts each image on its own page sized to the image. Images that do
// not decode are skipped and counted.
func Merge(images [][]byte) ([]byte, int, error) {
	pages := make([]page, 0, len(images))
	skipped := 0
	for _, b := range images {
		p, err := preparePage(b)
		if err != nil {
			skipped++
			continue
		}
		pages = append(pages, p)
	}
	if len(pages) == 0 {
		return nil, skipped, ErrNoImages
	}

	first := fpdf.SizeType{Wd: pages[0].width, Ht: pages[0].height}
	doc := fpdf.NewCustom(&fpdf.InitType{OrientationStr: "P", UnitStr: "pt", Size: first})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)

	opt := fpdf.ImageOptions{ImageType: "JPG"}
	for i, p := range pages {
		name := fmt.Sprintf("q%d", i)
		doc.AddPageFormat("P", fpdf.SizeType{Wd: p.width, Ht: p.height})
		doc.RegisterImageOptionsReader(name, opt, bytes.NewReader(p.jpeg))
		doc.ImageOptions(name, 0, 0, p.width, p.height, false, opt, 0, "")
		if doc.Err() {
			return nil, skipped, fmt.Errorf("pdf page %d: %w", i+1, doc.Error())
		}
	}

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return nil, skipped, fmt.Errorf("pdf output: %w", err)
	}
	return out.Bytes(), skipped, nil
}

// preparePage decodes b and returns baseline JPEG bytes for it. JPEG input
// is kept as is; anything else is flattened on white and re-encoded.
func preparePage(b []byte) (page, error) {
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return page{}, err
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return page{}, errors.New("empty image")
	}
	p := page{
		width:  float64(bounds.Dx()) * ptPerPixel,
		height: float64(bounds.Dy()) * ptPerPixel,
	}
	if format == "jpeg" {
		p.jpeg = b
		return p, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return page{}, err
	}
	p.jpeg = buf.Bytes()
	return p, nil
}
