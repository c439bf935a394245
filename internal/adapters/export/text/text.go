// Package text renders an hours sheet for a terminal
package text

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"punchclock/internal/core/workhours"

	"github.com/fatih/color"
)

// Renderer writes a sheet as aligned columns. Color state is per renderer,
// color.NoColor is left alone
type Renderer struct {
	group, odd, late, total *color.Color
}

// New returns a renderer; colored controls ANSI output
func New(colored bool) *Renderer {
	r := &Renderer{
		group: color.New(color.FgCyan, color.Bold),
		odd:   color.New(color.FgYellow),
		late:  color.New(color.FgRed),
		total: color.New(color.Bold),
	}
	for _, c := range []*color.Color{r.group, r.odd, r.late, r.total} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Render writes s to w
func (r *Renderer) Render(w io.Writer, s workhours.Sheet) error {
	if _, err := fmt.Fprintf(w, "Hours %s .. %s\n", s.Start, s.End); err != nil {
		return err
	}
	if len(s.Groups) == 0 {
		_, err := fmt.Fprintln(w, "no punches in range")
		return err
	}
	for _, g := range s.Groups {
		if _, err := fmt.Fprintf(w, "\n%s\n", r.group.Sprint(g.Name)); err != nil {
			return err
		}
		for _, emp := range g.Employees {
			if err := r.employee(w, emp); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) employee(w io.Writer, emp workhours.EmployeeHours) error {
	if _, err := fmt.Fprintf(w, "  %s (%d)\n", emp.Username, emp.UserID); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, d := range emp.Days {
		hours := d.Hours.String()
		if d.OddPunches {
			hours = r.odd.Sprint(hours)
		}
		fmt.Fprintf(tw, "    %s\t%s\t%s\t%s\n", d.Date, short(d.Weekday), r.punches(d), hours)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	line := fmt.Sprintf("    total %s", emp.Total.StringFixed(2))
	if emp.IncompleteDays > 0 {
		line += fmt.Sprintf(" (%d incomplete)", emp.IncompleteDays)
	}
	_, err := fmt.Fprintln(w, r.total.Sprint(line))
	return err
}

func (r *Renderer) punches(d workhours.Day) string {
	if len(d.Punches) == 0 {
		return "-"
	}
	out := make([]string, len(d.Punches))
	for i, p := range d.Punches {
		s := p.Local
		if p.Flags != 0 {
			s = r.late.Sprintf("%s [%s]", p.Local, p.Flags)
		}
		out[i] = s
	}
	return strings.Join(out, " ")
}

func short(weekday string) string {
	if len(weekday) > 3 {
		return weekday[:3]
	}
	return weekday
}
