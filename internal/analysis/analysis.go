// Package analysis measures an uploaded print file: page count, page size
// and ink coverage.
package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

const (
	TypePDF   = "pdf"
	TypeImage = "image"

	DefaultImageDPI = 300
	PDFRenderDPI    = 200

	cropPct       = 2
	inkThreshold  = 128
	mmPerInch     = 25.4
	pointsPerInch = 72.0
)

var ErrUnsupported = errors.New("unsupported file type")

// A4 is assumed when a PDF's page size cannot be read.
var A4 = models.PageSize{W: 210, H: 297}

// Analyze inspects data; filename only helps with type detection.
func Analyze(filename string, data []byte) (*models.Analysis, error) {
	if len(data) == 0 {
		return nil, errors.New("file is empty")
	}

	switch kind(filename, data) {
	case TypePDF:
		return analyzePDF(data)
	case TypeImage:
		return analyzeImage(data)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filename)
}

func kind(filename string, data []byte) string {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return TypePDF
	}
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return TypeImage
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return TypePDF
	case ".png", ".jpg", ".jpeg", ".gif":
		return TypeImage
	}
	return ""
}

func analyzeImage(data []byte) (*models.Analysis, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	dpi := imageDPI(format, data)
	bounds := img.Bounds()
	pageMM := &models.PageSize{
		W: round2(float64(bounds.Dx()) / float64(dpi) * mmPerInch),
		H: round2(float64(bounds.Dy()) / float64(dpi) * mmPerInch),
	}

	return &models.Analysis{
		Type:        TypeImage,
		Pages:       1,
		PageMM:      pageMM,
		DPIUsed:     dpi,
		CoveragePct: Coverage(img),
		CoverageMethod: map[string]any{
			"threshold": "luminance_below",
			"level":     inkThreshold,
			"crop_pct":  cropPct,
		},
	}, nil
}

// Coverage is the percentage of dark pixels once a 2% margin is cropped on
// every side, rounded to two decimals.
func Coverage(img image.Image) float64 {
	b := img.Bounds()
	padW := b.Dx() * cropPct / 100
	padH := b.Dy() * cropPct / 100
	roi := image.Rect(b.Min.X+padW, b.Min.Y+padH, b.Max.X-padW, b.Max.Y-padH)
	if roi.Empty() {
		return 0
	}

	var ink, total int
	for y := roi.Min.Y; y < roi.Max.Y; y++ {
		for x := roi.Min.X; x < roi.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			// 16-bit channels, ITU-R 601 weights.
			lum := (299*r + 587*g + 114*bl) / 1000 >> 8
			if lum < inkThreshold {
				ink++
			}
			total++
		}
	}
	return round2(float64(ink) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
