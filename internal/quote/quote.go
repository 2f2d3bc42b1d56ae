// Package quote prices an analysed order in Chilean pesos.
package quote

import (
	"github.com/shopspring/decimal"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

const (
	Currency         = "CLP"
	AlgorithmVersion = "v1"

	ColorBlackWhite = "Blanco y negro"
	ColorFull       = "Color"

	DeliveryHome   = "Delivery"
	DeliveryPickup = "Retiro en local"

	Formula = "total = area_m2 * pages * base_rate_clp_m2 * (1 + 0.60*(coverage_pct/100)) + delivery_fee"
)

var (
	baseRates = map[string]decimal.Decimal{
		ColorBlackWhite: decimal.NewFromInt(4500),
		ColorFull:       decimal.NewFromInt(9500),
	}
	coverageWeight = decimal.RequireFromString("0.60")
	deliveryFee    = decimal.NewFromInt(3000)

	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// BaseRate is the CLP price per square metre for a color option. Unknown
// options are priced as black and white.
func BaseRate(color string) decimal.Decimal {
	if rate, ok := baseRates[color]; ok {
		return rate
	}
	return baseRates[ColorBlackWhite]
}

// Calculate builds the quote; the total is rounded half to even.
func Calculate(options models.Options, analysis *models.Analysis) *models.Quote {
	color := options.Color
	if color == "" {
		color = ColorBlackWhite
	}
	delivery := options.Delivery
	if delivery == "" {
		delivery = DeliveryPickup
	}

	pageMM := &models.PageSize{}
	pages := 1
	coveragePct := 0.0
	if analysis != nil {
		if analysis.PageMM != nil {
			pageMM = analysis.PageMM
		}
		if analysis.Pages > 0 {
			pages = analysis.Pages
		}
		coveragePct = analysis.CoveragePct
	}

	area := decimal.NewFromFloat(pageMM.W).Div(thousand).
		Mul(decimal.NewFromFloat(pageMM.H).Div(thousand))
	if area.IsNegative() {
		area = decimal.Zero
	}

	baseRate := BaseRate(color)
	coverage := decimal.NewFromFloat(coveragePct)
	factor := decimal.NewFromInt(1).Add(coverageWeight.Mul(coverage.Div(hundred)))

	subtotal := area.Mul(decimal.NewFromInt(int64(pages))).Mul(baseRate).Mul(factor)
	fee := decimal.Zero
	if delivery == DeliveryHome {
		fee = deliveryFee
	}
	total := subtotal.Add(fee).RoundBank(0)

	steps := []models.QuoteStep{
		{Label: "Área (m²)", Value: area.StringFixedBank(4)},
		{Label: "Páginas", Value: decimal.NewFromInt(int64(pages)).String()},
		{Label: "Tarifa base (CLP/m²)", Value: baseRate.Truncate(0).String()},
		{Label: "Cobertura tinta (%)", Value: coverage.StringFixedBank(2) + "%"},
		{Label: "Factor cobertura", Value: factor.StringFixedBank(4)},
		{Label: "Subtotal", Value: subtotal.RoundBank(0).String() + " CLP"},
		{Label: "Delivery", Value: fee.Truncate(0).String() + " CLP"},
	}

	return &models.Quote{
		Currency: Currency,
		Inputs: models.QuoteInputs{
			PageMM:      pageMM,
			Pages:       pages,
			Color:       color,
			Delivery:    delivery,
			CoveragePct: coveragePct,
		},
		Coefficients: models.QuoteCoefficients{
			BaseRateCLPPerM2: baseRate,
			CoverageWeight:   coverageWeight,
			DeliveryFeeCLP:   fee,
		},
		Steps:            steps,
		Formula:          Formula,
		TotalCLP:         total.IntPart(),
		AlgorithmVersion: AlgorithmVersion,
	}
}
