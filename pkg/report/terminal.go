package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/picu-roster/engine/pkg/model"
)

// TerminalRenderer is the engine's only shipped ReportRenderer
// implementation: a plain fixed-width table for a terminal. Excel/HTML
// rendering is out of scope; a caller needing those implements
// roster.ReportRenderer itself.
type TerminalRenderer struct{}

// Render writes the horizon span, the breach listing, and the per-person
// and per-grade summary tables to w.
func (TerminalRenderer) Render(w io.Writer, r model.Roster, breaches BreachReport, summary Summary) error {
	if len(r.Days) > 0 {
		fmt.Fprintf(w, "roster %s to %s\n", r.Days[0].Date.Format("2006-01-02"), r.Days[len(r.Days)-1].Date.Format("2006-01-02"))
	}
	renderBreaches(w, breaches)
	renderPersonSummary(w, summary)
	renderGradeSummary(w, summary)
	return nil
}

func renderBreaches(w io.Writer, breaches BreachReport) {
	if breaches.Clean() {
		fmt.Fprintln(w, color.GreenString("no invariant breaches"))
		return
	}
	fmt.Fprintln(w, color.RedString("%d invariant breach(es):", breaches.Count()))
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Invariant", "Date", "Message"})
	for invariant, list := range breaches.ByInvariant {
		for _, b := range list {
			date := ""
			if !b.Date.IsZero() {
				date = b.Date.Format("2006-01-02")
			}
			table.Append([]string{invariant, date, b.Message})
		}
	}
	table.Render()
}

func renderPersonSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w, "\nper-person summary:")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Grade", "Hours", "Nights", "Long days", "Weekends", "Deviation %"})
	for _, p := range s.Persons {
		table.Append([]string{
			p.Name,
			string(p.Grade),
			fmt.Sprintf("%.0f", p.TotalHours),
			fmt.Sprintf("%d", p.NightCount),
			fmt.Sprintf("%d", p.LongDayCount),
			fmt.Sprintf("%d", p.WeekendCount),
			fmt.Sprintf("%+.1f", p.DeviationPct),
		})
	}
	table.Render()
}

func renderGradeSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w, "\nper-grade fairness:")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Grade", "Avg hours", "Hours Gini", "Night Gini"})
	for _, g := range s.Grades {
		table.Append([]string{
			string(g.Grade),
			fmt.Sprintf("%.1f", g.AvgHours),
			fmt.Sprintf("%.3f", g.HoursGini),
			fmt.Sprintf("%.3f", g.NightGini),
		})
	}
	table.Render()
}
