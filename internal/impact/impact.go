// Package impact derives environmental-impact figures from PAN commission rows.
//
// A fixed share of commission is donated, donations fund trees at a fixed
// cost each, and every tree offsets a fixed amount of CO2 per year.
package impact

import (
	"math"
	"math/big"
	"strconv"

	"github.com/R3E-Network/impact_service/internal/pan"
)

const (
	// DonationRate is the share of commission donated.
	DonationRate = 0.1
	// TreeCost is the donation amount that plants one tree.
	TreeCost = 0.44
	// CO2PerTreeLbs is the annual CO2 reduction per tree, in pounds.
	CO2PerTreeLbs = 22
)

// Stats is the environmental summary of a commission report.
type Stats struct {
	TotalCommission             string `json:"totalCommission"`
	TotalDonations              string `json:"totalDonations"`
	TreesPlanted                int64  `json:"treesPlanted"`
	AnnualCO2EmissionReducedLbs int64  `json:"annualCO2EmissionReducedLbs"`
}

// Calculate reduces commission rows into Stats. Rows whose commission is
// missing or not numeric contribute zero.
func Calculate(rows []pan.Row) Stats {
	var totalCommission float64
	for _, row := range rows {
		if text, ok := row.Commission(); ok {
			totalCommission += ParseAmount(text)
		}
	}

	totalDonations := totalCommission * DonationRate
	trees := toInt64(math.Floor(totalDonations / TreeCost))

	return Stats{
		TotalCommission:             formatMoney(totalCommission),
		TotalDonations:              formatMoney(totalDonations),
		TreesPlanted:                trees,
		AnnualCO2EmissionReducedLbs: trees * CO2PerTreeLbs,
	}
}

// formatMoney renders v with two decimals. A value lying exactly halfway
// between two cents rounds away from zero; everything else is rounded to the
// nearest cent of its exact binary value, so 1.005 stays "1.00". Magnitudes of
// 1e21 and above fall back to exponent notation.
func formatMoney(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	case math.Abs(v) >= 1e21:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if s, ok := formatHalfCent(v); ok {
		return s
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatHalfCent handles finite values that sit exactly on a half cent,
// where strconv would round to even.
func formatHalfCent(v float64) (string, bool) {
	// 53 mantissa bits times 200 fit well inside 128 bits, so the product is exact.
	halves := new(big.Float).SetPrec(128).SetFloat64(math.Abs(v))
	halves.Mul(halves, big.NewFloat(200))
	if !halves.IsInt() {
		return "", false
	}
	n, _ := halves.Int(nil)
	if n.Bit(0) == 0 {
		return "", false
	}

	cents := new(big.Int).Rsh(n.Add(n, big.NewInt(1)), 1).String()
	for len(cents) < 3 {
		cents = "0" + cents
	}
	s := cents[:len(cents)-2] + "." + cents[len(cents)-2:]
	if v < 0 {
		s = "-" + s
	}
	return s, true
}

// toInt64 truncates v, saturating so that the CO2 product stays in range.
// NaN maps to zero.
func toInt64(v float64) int64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt64/CO2PerTreeLbs:
		return math.MaxInt64 / CO2PerTreeLbs
	case v <= math.MinInt64/CO2PerTreeLbs:
		return math.MinInt64 / CO2PerTreeLbs
	default:
		return int64(v)
	}
}
