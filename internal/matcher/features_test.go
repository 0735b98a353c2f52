package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractYears(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "single year", text: "Will BTC hit $100k in 2025?", want: []string{"2025"}},
		{name: "range bounds", text: "Between 2020 and 2030", want: []string{"2020", "2030"}},
		{name: "out of range", text: "Back in 2019 or maybe 2031", want: []string{}},
		{name: "not a whole word", text: "Ticket 20250 or x2024", want: []string{}},
		{name: "repeated", text: "2024 then 2024 again", want: []string{"2024"}},
		{name: "empty", text: "", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractYears(tt.text).Sorted())
		})
	}
}

func TestExtractDates(t *testing.T) {
	t.Run("all forms in order of occurrence", func(t *testing.T) {
		got := ExtractDates("By 12/31/2024, or March 5th, 2025, then Q1 2025 and finally 5 June")
		assert.Equal(t, []string{"12/31/2024", "March 5th, 2025", "Q1 2025", "5 June"}, got)
	})

	t.Run("first occurrence wins over pattern order", func(t *testing.T) {
		got := ExtractDates("Q2 2025 or 1-2-2025")
		assert.Equal(t, []string{"Q2 2025", "1-2-2025"}, got)
	})

	t.Run("month names are case-insensitive", func(t *testing.T) {
		got := ExtractDates("before DECEMBER 1")
		assert.Equal(t, []string{"DECEMBER 1"}, got)
	})

	t.Run("duplicates are kept", func(t *testing.T) {
		got := ExtractDates("Q3 2024 vs Q3 2024")
		assert.Equal(t, []string{"Q3 2024", "Q3 2024"}, got)
	})

	t.Run("no dates", func(t *testing.T) {
		assert.Empty(t, ExtractDates("Will it rain tomorrow?"))
	})
}

func TestExtractPriceTargets(t *testing.T) {
	got := ExtractPriceTargets("Will BTC hit $100K, $1,000.50 or 500 USD or 10 dollars?")
	assert.Equal(t, []string{"$1,000.50", "$100k", "10 dollars", "500 usd"}, got.Sorted())

	assert.True(t, ExtractPriceTargets("ETH above $4k?").Equal(ExtractPriceTargets("eth ABOVE $4K")))
	assert.False(t, ExtractPriceTargets("$100k").Equal(ExtractPriceTargets("$100,000")))
	assert.Empty(t, ExtractPriceTargets("Will it rain?"))
}

func TestTokenSetEqual(t *testing.T) {
	a := newTokenSet([]string{"x", "y"})
	assert.True(t, a.Equal(newTokenSet([]string{"y", "x", "x"})))
	assert.False(t, a.Equal(newTokenSet([]string{"x"})))
	assert.False(t, a.Equal(newTokenSet([]string{"x", "z"})))
	assert.True(t, a.has("y"))
}
