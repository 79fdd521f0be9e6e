package core

// validation.go provides the generic checks that every table's rule set is
// composed from.
//
// Each check is a pure function over an in-memory table. Checks do not stop
// at the first problem: every row is evaluated and every violation returned,
// so a row failing one check is still fully evaluated by the next.

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

// CheckLabels reads the Label column of t and reports labels that are not in
// valid (unknown_label) or, when shape is non-nil, do not match it
// (invalid_label). source names the table or registry that defines valid and
// appears in the instructions.
//
// Every label is returned, including the ones that were reported, so that
// downstream tables can still resolve references to them.
func CheckLabels(t *Table, source string, valid LabelSet, shape *regexp.Regexp) ([]string, []Violation) {
	labels := make([]string, 0, t.Len())
	var violations []Violation

	for _, row := range t.Rows {
		label := row.Get(schema.Label)
		labels = append(labels, label)

		if !valid.Contains(label) {
			violations = append(violations, NewViolation(t, row, schema.Label,
				RuleUnknownLabel,
				"unknown label",
				label,
				fmt.Sprintf("use a label defined in %s", source),
			))
		}
		if shape != nil && !shape.MatchString(label) {
			violations = append(violations, NewViolation(t, row, schema.Label,
				RuleInvalidLabel,
				"invalid label",
				label,
				fmt.Sprintf("change label to match pattern '%s'", shape.String()),
			))
		}
	}

	return labels, violations
}

// FieldCheck configures CheckField. The zero value checks a required Parent
// column against an empty label set.
type FieldCheck struct {
	Field    schema.Column // Column to check (default: Parent)
	Valid    LabelSet      // Labels the value must belong to
	TopTerm  string        // Value exempt from the membership check
	Source   string        // Name used in instructions (default: the table name)
	Optional bool          // If true, an absent value is not reported
}

// CheckField checks the values of one column for requiredness
// (missing_required_<field>) and for membership in fc.Valid
// (invalid_<field>). Values are trimmed; whitespace-only cells are absent.
func CheckField(t *Table, fc FieldCheck) []Violation {
	field := fc.Field
	if field == "" {
		field = schema.Parent
	}
	source := fc.Source
	if source == "" {
		source = t.Name
	}
	key := ruleKey(string(field))

	var violations []Violation
	for _, row := range t.Rows {
		value, present := row.Value(field)

		if !present {
			if !fc.Optional {
				violations = append(violations, NewViolation(t, row, field,
					"missing_required_"+key,
					fmt.Sprintf("missing required '%s'", field),
					"",
					fmt.Sprintf("add a '%s' term", field),
				))
			}
			continue
		}

		if fc.TopTerm != "" && value == fc.TopTerm {
			continue
		}
		if !fc.Valid.Contains(value) {
			violations = append(violations, NewViolation(t, row, field,
				"invalid_"+key,
				fmt.Sprintf("invalid '%s'", field),
				value,
				fmt.Sprintf("replace the '%s' with a term from %s", field, source),
			))
		}
	}
	return violations
}

// CheckRestrictionLevel reports every row whose Restriction Level is not one
// of the values specs declares for that column. Matching is exact and
// case-sensitive. A spec without enumerated levels accepts nothing.
func CheckRestrictionLevel(t *Table, specs []schema.FieldSpec) []Violation {
	levels := schema.EnumValues(specs, schema.RestrictionLevel)
	allowed := NewLabelSet(levels...)

	var violations []Violation
	for _, row := range t.Rows {
		level := row.Get(schema.RestrictionLevel)
		if allowed.Contains(level) {
			continue
		}
		violations = append(violations, NewViolation(t, row, schema.RestrictionLevel,
			RuleInvalidRestrictionLevel,
			"invalid restriction level",
			level,
			"change the restriction level to one of: "+strings.Join(levels, ", "),
		))
	}
	return violations
}
