package session_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
	"github.com/Delyplott/DelyPlot-Web/internal/session"
)

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRenderOrder_Quoted(t *testing.T) {
	size := int64(1572864)
	id := "X1"
	order := &models.Order{
		ID:       "O1",
		Status:   models.StatusQuoted,
		Customer: models.Customer{Name: "Ana", Phone: "+56 9 1234 5678"},
		Options:  models.Options{Size: "A4", Color: "Color", Delivery: "Despacho"},
		Notes:    "urgente",
		Files: []models.FileDescriptor{{
			Provider:    models.ProviderDrive,
			DriveFileID: &id,
			Filename:    "plano.pdf",
			ContentType: "application/pdf",
			Size:        &size,
		}},
		Preview: &models.Preview{URL: "https://example.test/preview_O1.pdf"},
		Quote: &models.Quote{
			Steps: []models.QuoteStep{
				{Label: "Area m2", Value: "0.0624"},
				{Label: "Subtotal", Value: "5000"},
			},
			Formula:  "area * rate",
			TotalCLP: 5000,
		},
	}

	golden(t).Assert(t, "quoted_order", []byte(session.RenderOrder(order)))
}

func TestRenderOrder_Failed(t *testing.T) {
	order := &models.Order{
		ID:     "O2",
		Status: models.StatusError,
		Files:  []models.FileDescriptor{{Filename: "a.png", ContentType: models.DefaultContentType}},
		Error:  &models.OrderError{Message: "failed to analyze"},
	}

	golden(t).Assert(t, "failed_order", []byte(session.RenderOrder(order)))
}

func TestTerminalRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := session.NewTerminalRenderer(&buf)

	r.State(session.StateUploading)
	r.Alert(&session.OrderFailedError{OrderID: "O1"})
	r.Alert(errors.New("popup blocked"))
	r.Reset()

	assert.Equal(t, "» Uploading files...\n"+
		"!! The order could not be quoted: no details\n"+
		"!! popup blocked\n"+
		"-- new order --\n", buf.String())
}
