// Package templates renders the dashboard and error fragments.
//
// Components are written in .templ files; run `templ generate` after editing
// them.
package templates

import (
	"fmt"
	"time"

	"github.com/JonMunkholm/mrovalidate/internal/core"
)

// DashboardData is everything the dashboard shows.
type DashboardData struct {
	Tables    []core.TableDefinition
	Last      *core.Report
	History   bool // Run history is configured
	Generated time.Time
}

// maxRows caps the violations listed on the dashboard.
const maxRows = 200

func runSummary(r *core.Report) string {
	return fmt.Sprintf(": %d violation(s) in %d table(s), %s",
		r.ViolationCount(), len(r.Tables), r.Duration.Round(time.Millisecond))
}

func visibleViolations(vs []core.Violation) []core.Violation {
	if len(vs) > maxRows {
		return vs[:maxRows]
	}
	return vs
}

func hiddenNote(n int) string {
	return fmt.Sprintf("%d more, download the report for the full list", n)
}
