package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuickStock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		entries  []SizeStock
		rejected []string
	}{
		{
			name:     "two entries",
			input:    "45*3, 42*7",
			entries:  []SizeStock{{"45", 3}, {"42", 7}},
			rejected: []string{},
		},
		{
			name:     "blank tokens skipped",
			input:    " , 40*1,,",
			entries:  []SizeStock{{"40", 1}},
			rejected: []string{},
		},
		{
			name:     "labels with spaces",
			input:    "Taille 5 * 20",
			entries:  []SizeStock{{"Taille 5", 20}},
			rejected: []string{},
		},
		{
			name:     "malformed tokens rejected",
			input:    "44, *3, 41*, 39*x, 38*-1, 37*2.5, 36*4",
			entries:  []SizeStock{{"36", 4}},
			rejected: []string{"44", "*3", "41*", "39*x", "38*-1", "37*2.5"},
		},
		{
			name:     "last duplicate wins",
			input:    "42*1, 42*9",
			entries:  []SizeStock{{"42", 9}},
			rejected: []string{},
		},
		{
			name:     "empty input",
			input:    "",
			entries:  []SizeStock{},
			rejected: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseQuickStock(tt.input)
			assert.Equal(t, tt.entries, res.Entries)
			assert.Equal(t, tt.rejected, res.Rejected)
		})
	}
}

func TestMergeSizesReplacesAndAppends(t *testing.T) {
	existing := []SizeStock{{"40", 1}, {"41", 2}}
	merged := MergeSizes(existing, []SizeStock{{"41", 5}, {"45", 3}})

	assert.Equal(t, []SizeStock{{"40", 1}, {"41", 5}, {"45", 3}}, merged)
	assert.Equal(t, []SizeStock{{"40", 1}, {"41", 2}}, existing, "input left untouched")
}

func TestSetSizeStock(t *testing.T) {
	sizes := []SizeStock{{"S", 1}, {"M", 2}}

	assert.Equal(t, []SizeStock{{"M", 2}, {"S", 4}}, SetSizeStock(sizes, "S", 4))
	assert.Equal(t, []SizeStock{{"S", 1}}, SetSizeStock(sizes, "M", 0))
	assert.Equal(t, []SizeStock{{"S", 1}, {"M", 2}, {UniqueSize, 7}}, SetSizeStock(sizes, UniqueSize, 7))
}

func TestAvailableSizes(t *testing.T) {
	assert.Equal(t, []string{"XS", "S", "M", "L", "XL", "XXL"}, AvailableSizes("vêtements"))
	assert.Empty(t, AvailableSizes("accessoires"))

	all := AvailableSizes(All)
	assert.Len(t, all, 12+6+3)
	assert.Equal(t, all, AvailableSizes(""))
}
