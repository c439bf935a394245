// Package cli is the punchclock-report command line
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"punchclock/internal/adapters/export/text"
	"punchclock/internal/adapters/export/xlsx"
	"punchclock/internal/core/report"
	"punchclock/internal/core/version"
	"punchclock/internal/core/workhours"
	"punchclock/internal/services/report/domain"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Runner is the slice of the report service the commands use
type Runner interface {
	domain.ServicePort
	domain.Limits
}

// PortRunner joins separately registered ports into a Runner
type PortRunner struct {
	domain.ServicePort
	domain.Limits
}

// Opener builds a Runner and returns a close func
type Opener func(ctx context.Context) (Runner, func(), error)

// RootOptions holds global flags
type RootOptions struct {
	Format  string
	Out     string
	NoColor bool
}

// Formats are the accepted --format values
var Formats = []string{"text", "json", "xlsx"}

// NewRootCommand builds the command tree. rules is shown by "rules"
func NewRootCommand(open Opener, rules func() (workhours.Rules, error)) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "punchclock-report",
		Short:         "Attendance and work-hours reports from the punch store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(Formats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, Formats)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|xlsx)")
	cmd.PersistentFlags().StringVarP(&opts.Out, "out", "o", "", "write to a file instead of stdout")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored text output")

	cmd.AddCommand(newHoursCommand(opts, open))
	cmd.AddCommand(newAttendanceCommand(opts, open))
	cmd.AddCommand(newRulesCommand(rules))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build info",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info("punchclock-report"))
		},
	})
	return cmd
}

type rangeFlags struct {
	start, end string
	noExternal bool
}

func (f *rangeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "first day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&f.end, "end", "", "last day, YYYY-MM-DD (defaults to --start)")
	cmd.Flags().BoolVar(&f.noExternal, "no-external", false, "skip the external punch feed")
	_ = cmd.MarkFlagRequired("start")
}

func (f *rangeFlags) request(r Runner) (domain.Request, error) {
	end := f.end
	if end == "" {
		end = f.start
	}
	ext := !f.noExternal
	return domain.Query{StartDate: f.start, EndDate: end, IncludeExternal: &ext}.Resolve(r.MaxRangeDays())
}

func newHoursCommand(opts *RootOptions, open Opener) *cobra.Command {
	var rf rangeFlags
	cmd := &cobra.Command{
		Use:   "hours",
		Short: "Worked hours and punch flags per employee-day",
		Example: `  punchclock-report hours --start 2024-03-01 --end 2024-03-15
  punchclock-report hours --start 2024-03-01 --end 2024-03-15 --format xlsx -o march.xlsx`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Format == "xlsx" && opts.Out == "" {
				return fmt.Errorf("--format xlsx needs --out")
			}
			r, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			req, err := rf.request(r)
			if err != nil {
				return err
			}
			sheet, err := r.Hours(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeOut(cmd, opts, func(w io.Writer) error {
				switch opts.Format {
				case "json":
					return encodeJSON(w, sheet)
				case "xlsx":
					return xlsx.Write(w, sheet)
				default:
					return text.New(!opts.NoColor && opts.Out == "").Render(w, sheet)
				}
			})
		},
	}
	rf.bind(cmd)
	return cmd
}

func newAttendanceCommand(opts *RootOptions, open Opener) *cobra.Command {
	var rf rangeFlags
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Reconciled punches grouped by group, employee and date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Format == "xlsx" {
				return fmt.Errorf("attendance supports text and json")
			}
			r, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			req, err := rf.request(r)
			if err != nil {
				return err
			}
			tree, err := r.Attendance(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeOut(cmd, opts, func(w io.Writer) error {
				if opts.Format == "json" {
					return encodeJSON(w, tree)
				}
				return writeTree(w, tree, req.Range.Start.String())
			})
		},
	}
	rf.bind(cmd)
	return cmd
}

func newRulesCommand(rules func() (workhours.Rules, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the effective work-hours rules as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := rules()
			if err != nil {
				return err
			}
			return yaml.NewEncoder(cmd.OutOrStdout()).Encode(rulesView(r))
		},
	}
}

// rulesView matches the rules file layout so the output can be saved and edited
func rulesView(r workhours.Rules) map[string]any {
	clock := func(m int) string { return fmt.Sprintf("%02d:%02d", m/60, m%60) }
	exempt := r.LateExempt
	if exempt == nil {
		exempt = []string{}
	}
	return map[string]any{
		"timezone":               r.Location.String(),
		"adjusted_group":         r.AdjustedGroup,
		"lunch_deduction_hours":  r.LunchDeduction.InexactFloat64(),
		"deduction_min_hours":    r.DeductionMinimum.InexactFloat64(),
		"late_exempt":            exempt,
		"break_collapse_minutes": int(r.BreakCollapse / time.Minute),
		"morning_start":          clock(r.MorningStart),
		"late_lunch_at":          clock(r.LateLunchAt),
		"early_over_at":          clock(r.EarlyOverAt),
		"late_over_at":           clock(r.LateOverAt),
	}
}

func writeOut(cmd *cobra.Command, opts *RootOptions, fn func(io.Writer) error) error {
	if opts.Out == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(opts.Out)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTree(w io.Writer, t report.Tree, from string) error {
	if t.Len() == 0 {
		_, err := fmt.Fprintf(w, "no punches since %s\n", from)
		return err
	}
	for _, g := range t.Groups() {
		if _, err := fmt.Fprintln(w, g); err != nil {
			return err
		}
		for _, name := range t.Employees(g) {
			emp := t[g][name]
			fmt.Fprintf(w, "  %s (%d)\n", name, emp.UserID)
			for _, d := range emp.SortedDates() {
				fmt.Fprintf(w, "    %s", d)
				for _, at := range emp.Dates[d] {
					fmt.Fprintf(w, " %s", at.Format(time.RFC3339))
				}
				fmt.Fprintln(w)
			}
		}
	}
	return nil
}
