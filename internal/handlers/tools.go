package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Delyplott/DelyPlot-Web/internal/analysis"
	"github.com/Delyplott/DelyPlot-Web/internal/models"
	"github.com/Delyplott/DelyPlot-Web/internal/quote"
)

const maxAnalyzeBytes = 64 << 20

type QuoteRequest struct {
	Options  models.Options   `json:"options"`
	Analysis *models.Analysis `json:"analysis"`
}

// Analyze godoc
// @Summary     Analyze a file
// @Description Page count, page size and ink coverage of an uploaded PDF or image
// @Tags        tools
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       file formData file true "File"
// @Success     200 {object} models.Analysis
// @Failure     400 {object} models.ErrorResponse
// @Router      /tools/analyze [post]
func Analyze(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing file"})
		return
	}
	if fh.Size > maxAnalyzeBytes {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: "file too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read file", Message: err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read file", Message: err.Error()})
		return
	}

	result, err := analysis.Analyze(fh.Filename, data)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, analysis.ErrUnsupported) {
			status = http.StatusBadRequest
		}
		c.JSON(status, models.ErrorResponse{Error: "failed to analyze file", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Quote godoc
// @Summary     Price an analysis
// @Tags        tools
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body QuoteRequest true "Options and analysis"
// @Success     200 {object} models.Quote
// @Failure     400 {object} models.ErrorResponse
// @Router      /tools/quote [post]
func Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, quote.Calculate(req.Options, req.Analysis))
}
