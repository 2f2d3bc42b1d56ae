package analysis

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

func init() {
	// Keep pdfcpu from writing a config dir under the user's home.
	model.ConfigPath = "disable"
}

func pdfConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// analyzePDF reads the page tree without rendering, so coverage is not
// measured for PDFs. The size is the first page's media box.
func analyzePDF(data []byte) (*models.Analysis, error) {
	pages, err := api.PageCount(bytes.NewReader(data), pdfConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf page tree: %w", err)
	}
	if pages < 1 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pageMM := A4
	dims, err := api.PageDims(bytes.NewReader(data), pdfConfig())
	if err == nil && len(dims) > 0 && dims[0].Width > 0 && dims[0].Height > 0 {
		pageMM = models.PageSize{
			W: round2(dims[0].Width / pointsPerInch * mmPerInch),
			H: round2(dims[0].Height / pointsPerInch * mmPerInch),
		}
	}

	return &models.Analysis{
		Type:        TypePDF,
		Pages:       pages,
		PageMM:      &pageMM,
		DPIUsed:     PDFRenderDPI,
		CoveragePct: 0,
		CoverageMethod: map[string]any{
			"threshold": "unavailable",
			"crop_pct":  cropPct,
		},
	}, nil
}
