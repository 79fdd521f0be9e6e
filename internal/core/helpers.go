package core

import "strings"

// CleanCell trims surrounding whitespace from a cell value.
// A cell that is empty after cleaning is treated as absent by every rule.
func CleanCell(s string) string {
	return strings.TrimSpace(s)
}

// ruleKey converts a column name into the suffix used by field rule IDs:
// lower-cased with spaces replaced by underscores ("With Haplotype" ->
// "with_haplotype").
func ruleKey(field string) string {
	return strings.ReplaceAll(strings.ToLower(field), " ", "_")
}
