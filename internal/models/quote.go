package models

import "github.com/shopspring/decimal"

type PageSize struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Analysis is what the worker learned about the primary file.
type Analysis struct {
	Type           string         `json:"type"`
	Pages          int            `json:"pages"`
	PageMM         *PageSize      `json:"page_mm"`
	DPIUsed        int            `json:"dpi_used"`
	CoveragePct    float64        `json:"coverage_pct"`
	CoverageMethod map[string]any `json:"coverage_method,omitempty"`
}

type QuoteStep struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type QuoteInputs struct {
	PageMM      *PageSize `json:"page_mm"`
	Pages       int       `json:"pages"`
	Color       string    `json:"color"`
	Delivery    string    `json:"delivery"`
	CoveragePct float64   `json:"coverage_pct"`
}

type QuoteCoefficients struct {
	BaseRateCLPPerM2 decimal.Decimal `json:"base_rate_clp_per_m2"`
	CoverageWeight   decimal.Decimal `json:"coverage_weight"`
	DeliveryFeeCLP   decimal.Decimal `json:"delivery_fee_clp"`
}

type Quote struct {
	Currency         string            `json:"currency"`
	Inputs           QuoteInputs       `json:"inputs"`
	Coefficients     QuoteCoefficients `json:"coefficients"`
	Steps            []QuoteStep       `json:"steps"`
	Formula          string            `json:"formula"`
	TotalCLP         int64             `json:"total_clp"`
	AlgorithmVersion string            `json:"algorithm_version"`
}
