package impact

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/impact_service/internal/pan"
)

func rows(raws ...string) []pan.Row {
	out := make([]pan.Row, 0, len(raws))
	for _, raw := range raws {
		out = append(out, pan.NewRow(raw))
	}
	return out
}

func TestCalculate_MixedRows(t *testing.T) {
	stats := Calculate(rows(
		`{"commission":"100"}`,
		`{"commission":"abc"}`,
		`{"commission":"50.5"}`,
	))

	assert.Equal(t, Stats{
		TotalCommission:             "150.50",
		TotalDonations:              "15.05",
		TreesPlanted:                34,
		AnnualCO2EmissionReducedLbs: 748,
	}, stats)
}

func TestCalculate_Empty(t *testing.T) {
	for _, input := range [][]pan.Row{nil, {}} {
		assert.Equal(t, Stats{
			TotalCommission:             "0.00",
			TotalDonations:              "0.00",
			TreesPlanted:                0,
			AnnualCO2EmissionReducedLbs: 0,
		}, Calculate(input))
	}
}

func TestCalculate_MissingAndMalformed(t *testing.T) {
	stats := Calculate(rows(
		`{}`,
		`{"commission":null}`,
		`{"commission":true}`,
		`{"commission":{"value":"10"}}`,
		`null`,
		`"10"`,
		`{"commission":"44"}`,
	))

	assert.Equal(t, "44.00", stats.TotalCommission)
	assert.Equal(t, "4.40", stats.TotalDonations)
	assert.Equal(t, int64(10), stats.TreesPlanted)
	assert.Equal(t, int64(220), stats.AnnualCO2EmissionReducedLbs)
}

func TestCalculate_ArrayCommission(t *testing.T) {
	stats := Calculate(rows(
		`{"commission":[5]}`,
		`{"commission":["2.5","9"]}`,
		`{"commission":[]}`,
		`{"commission":[null,1]}`,
	))

	assert.Equal(t, "7.50", stats.TotalCommission)
}

func TestCalculate_NumericCommission(t *testing.T) {
	stats := Calculate(rows(`{"commission":12.345}`, `{"commission":"7.655"}`))

	assert.Equal(t, "20.00", stats.TotalCommission)
	assert.Equal(t, "2.00", stats.TotalDonations)
	assert.Equal(t, int64(4), stats.TreesPlanted)
}

func TestCalculate_Invariants(t *testing.T) {
	inputs := [][]string{
		{`{"commission":"0.01"}`},
		{`{"commission":"4.39"}`, `{"commission":"0.01"}`},
		{`{"commission":"1234.56"}`, `{"commission":"-34.56"}`},
		{`{"commission":"999999.99"}`},
		{`{"commission":"-100"}`},
	}

	for _, raws := range inputs {
		stats := Calculate(rows(raws...))

		var total float64
		for _, raw := range raws {
			text, _ := pan.NewRow(raw).Commission()
			total += ParseAmount(text)
		}
		donations := total * DonationRate
		trees := int64(math.Floor(donations / TreeCost))

		assert.Equal(t, formatMoney(total), stats.TotalCommission, raws)
		assert.Equal(t, formatMoney(donations), stats.TotalDonations, raws)
		assert.Equal(t, trees, stats.TreesPlanted, raws)
		assert.Equal(t, trees*CO2PerTreeLbs, stats.AnnualCO2EmissionReducedLbs, raws)
	}
}

func TestCalculate_NegativeTotalFloors(t *testing.T) {
	stats := Calculate(rows(`{"commission":"-1"}`))

	assert.Equal(t, "-1.00", stats.TotalCommission)
	assert.Equal(t, "-0.10", stats.TotalDonations)
	assert.Equal(t, int64(-1), stats.TreesPlanted)
	assert.Equal(t, int64(-22), stats.AnnualCO2EmissionReducedLbs)
}

func TestCalculate_SaturatesHugeTotals(t *testing.T) {
	stats := Calculate(rows(`{"commission":"1e300"}`))

	assert.Equal(t, int64(math.MaxInt64/CO2PerTreeLbs), stats.TreesPlanted)
	assert.Positive(t, stats.AnnualCO2EmissionReducedLbs)
}

func TestCalculate_HalfCentRoundsAwayFromZero(t *testing.T) {
	tests := []struct {
		commission string
		want       string
	}{
		{"0.125", "0.13"},
		{"10.125", "10.13"},
		{"-0.125", "-0.13"},
		{"0.375", "0.38"},
		{"1.005", "1.00"},
		{"2.675", "2.67"},
		{"0.005", "0.01"},
	}

	for _, tt := range tests {
		stats := Calculate(rows(`{"commission":"` + tt.commission + `"}`))
		assert.Equal(t, tt.want, stats.TotalCommission, "commission %s", tt.commission)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{1.25, "1.25"},
		{1.2549, "1.25"},
		{0.625, "0.63"},
		{-2.5, "-2.50"},
		{-0.001, "-0.00"},
		{1e21, "1e+21"},
		{1.5e300, "1.5e+300"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(tt.in), "formatMoney(%v)", tt.in)
	}
}

func TestStats_JSON(t *testing.T) {
	data, err := json.Marshal(Calculate(rows(`{"commission":"100"}`)))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"totalCommission": "100.00",
		"totalDonations": "10.00",
		"treesPlanted": 22,
		"annualCO2EmissionReducedLbs": 484
	}`, string(data))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"100", 100},
		{"50.5", 50.5},
		{"  12.25", 12.25},
		{"\t-3", -3},
		{"+7", 7},
		{".5", 0.5},
		{"5.", 5},
		{"50.5abc", 50.5},
		{"12,50", 12},
		{"1e3", 1000},
		{"1E-2", 0.01},
		{"2e", 2},
		{"3e+", 3},
		{"0x10", 0},
		{"abc", 0},
		{"", 0},
		{".", 0},
		{"-", 0},
		{"Infinity", 0},
		{"NaN", 0},
		{"1e999", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAmount(tt.in), "ParseAmount(%q)", tt.in)
	}
}
