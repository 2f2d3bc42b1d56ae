// Package preview renders the one-page proof sheet attached to a quoted
// order: the artwork (for raster inputs), corner crop marks and a caption.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/Delyplott/DelyPlot-Web/internal/analysis"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

const (
	ContentType = "application/pdf"

	cropMarkMM  = 6.0
	captionMM   = 10.0
	jpegQuality = 85
	artName     = "art"
)

// Filename is the object name a preview is stored under.
func Filename(orderID string) string {
	return fmt.Sprintf("preview_%s.pdf", orderID)
}

// Render builds the proof sheet. Raster sources are embedded full page;
// PDF sources get marks and caption only.
func Render(orderID string, source []byte, a *models.Analysis, now time.Time) ([]byte, error) {
	size := analysis.A4
	if a != nil && a.PageMM != nil && a.PageMM.W > 0 && a.PageMM.H > 0 {
		size = *a.PageMM
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: size.W, Ht: size.H},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	// Uncompressed streams keep the caption searchable in the stored file.
	pdf.SetCompression(false)
	pdf.SetCreationDate(now)
	pdf.AddPage()

	if a != nil && a.Type == analysis.TypeImage {
		art, err := encodeArt(source)
		if err != nil {
			return nil, err
		}
		opts := fpdf.ImageOptions{ImageType: "JPG"}
		pdf.RegisterImageOptionsReader(artName, opts, bytes.NewReader(art))
		pdf.ImageOptions(artName, 0, 0, size.W, size.H, false, opts, 0, "")
	}

	pdf.SetLineWidth(0.2)
	for _, l := range cropMarks(size.W, size.H, cropMarkMM) {
		pdf.Line(l[0], l[1], l[2], l[3])
	}

	coverage := "-"
	if a != nil {
		coverage = fmt.Sprintf("%.2f", a.CoveragePct)
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(captionMM, size.H-captionMM, fmt.Sprintf("Delyplot Preview | orderId=%s | coverage=%s%% | %s",
		orderID, coverage, now.UTC().Format("2006-01-02 15:04 UTC")))

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("failed to write preview: %w", err)
	}
	return out.Bytes(), nil
}

// encodeArt re-encodes the source as an RGB JPEG whatever its color model.
func encodeArt(source []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("failed to decode preview source: %w", err)
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgba, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode preview image: %w", err)
	}
	return buf.Bytes(), nil
}

// cropMarks returns the eight corner strokes as x1 y1 x2 y2, origin top left.
func cropMarks(w, h, m float64) [][4]float64 {
	return [][4]float64{
		{0, m, m, m}, {m, 0, m, m},
		{w - m, 0, w - m, m}, {w - m, m, w, m},
		{0, h - m, m, h - m}, {m, h, m, h - m},
		{w - m, h, w - m, h - m}, {w - m, h - m, w, h - m},
	}
}
