package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellAddress(t *testing.T) {
	tests := []struct {
		row, col int
		want     string
	}{
		{1, 1, "A1"},
		{1, 26, "Z1"},
		{1, 27, "AA1"},
		{3, 5, "E3"},
		{10, 52, "AZ10"},
		{2, 53, "BA2"},
		{7, 702, "ZZ7"},
		{7, 703, "AAA7"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CellAddress(tt.row, tt.col), "CellAddress(%d, %d)", tt.row, tt.col)
	}
}

func TestColumnName_Invalid(t *testing.T) {
	assert.Empty(t, ColumnName(0))
}

func TestParseCellAddress_RoundTrip(t *testing.T) {
	for col := 1; col <= 2000; col++ {
		for _, row := range []int{1, 3, 99, 12345} {
			addr := CellAddress(row, col)
			gotRow, gotCol, err := ParseCellAddress(addr)
			require.NoError(t, err, addr)
			require.Equal(t, row, gotRow, addr)
			require.Equal(t, col, gotCol, addr)
		}
	}
}

func TestParseCellAddress_Errors(t *testing.T) {
	for _, addr := range []string{"", "A", "12", "A0", "a1", "A-1"} {
		_, _, err := ParseCellAddress(addr)
		assert.Error(t, err, "ParseCellAddress(%q)", addr)
	}
}
