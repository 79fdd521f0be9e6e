package core

import (
	"fmt"
	"strconv"
	"strings"
)

// CellAddress converts a 1-based row and column into spreadsheet A1 notation.
//
// Columns use bijective base-26 (A..Z, AA, AB, ...): there is no zero digit,
// so a remainder of 0 becomes 'Z' and borrows one from the quotient.
//
//	CellAddress(1, 1)  // "A1"
//	CellAddress(1, 27) // "AA1"
//	CellAddress(3, 5)  // "E3"
func CellAddress(row, col int) string {
	return ColumnName(col) + strconv.Itoa(row)
}

// ColumnName returns the letter sequence for a 1-based column number.
// Returns "" for col < 1.
func ColumnName(col int) string {
	var letters []byte
	for col > 0 {
		rem := col % 26
		col /= 26
		if rem == 0 {
			rem = 26
			col--
		}
		letters = append(letters, byte('A'+rem-1))
	}
	for i, j := 0, len(letters)-1; i < j; i, j = i+1, j-1 {
		letters[i], letters[j] = letters[j], letters[i]
	}
	return string(letters)
}

// ParseCellAddress is the inverse of CellAddress.
func ParseCellAddress(addr string) (row, col int, err error) {
	addr = strings.TrimSpace(addr)
	i := 0
	for i < len(addr) && addr[i] >= 'A' && addr[i] <= 'Z' {
		col = col*26 + int(addr[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(addr) {
		return 0, 0, fmt.Errorf("invalid cell address %q", addr)
	}
	row, err = strconv.Atoi(addr[i:])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("invalid cell address %q", addr)
	}
	return row, col, nil
}
