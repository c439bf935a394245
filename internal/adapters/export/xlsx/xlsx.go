// Package xlsx renders an hours sheet as a spreadsheet
package xlsx

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"punchclock/internal/core/workhours"

	"github.com/xuri/excelize/v2"
)

// ContentType is the media type of the rendered workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	hoursSheet   = "Hours"
	summarySheet = "Summary"
)

var hoursHeader = []any{"Group", "User ID", "Employee", "Date", "Weekday", "Punches", "Rounded", "Hours", "Flags"}

// Filename returns the attachment name for a sheet
func Filename(s workhours.Sheet) string {
	return fmt.Sprintf("hours_%s_%s.xlsx", s.Start, s.End)
}

type styles struct {
	header, odd, flagged, total int
}

// Write renders s to w
func Write(w io.Writer, s workhours.Sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", hoursSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	st, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := writeHours(f, st, s); err != nil {
		return err
	}
	if err := writeSummary(f, st, s); err != nil {
		return err
	}
	return f.Write(w)
}

// Bytes renders s into memory
func Bytes(s workhours.Sheet) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	if st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	}); err != nil {
		return st, err
	}
	if st.odd, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFF2CC"}},
	}); err != nil {
		return st, err
	}
	if st.flagged, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#C00000"},
	}); err != nil {
		return st, err
	}
	st.total, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	return st, err
}

func setRow(f *excelize.File, sheet string, row int, vals []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &vals)
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(cols, row)
	return f.SetCellStyle(sheet, from, to, style)
}

func writeHours(f *excelize.File, st styles, s workhours.Sheet) error {
	if err := setRow(f, hoursSheet, 1, hoursHeader); err != nil {
		return err
	}
	if err := styleRow(f, hoursSheet, 1, len(hoursHeader), st.header); err != nil {
		return err
	}
	row := 2
	for _, g := range s.Groups {
		for _, emp := range g.Employees {
			for _, d := range emp.Days {
				if err := setRow(f, hoursSheet, row, dayRow(g.Name, emp, d)); err != nil {
					return err
				}
				switch {
				case d.OddPunches:
					if err := styleRow(f, hoursSheet, row, len(hoursHeader), st.odd); err != nil {
						return err
					}
				case flagged(d):
					if err := styleRow(f, hoursSheet, row, len(hoursHeader), st.flagged); err != nil {
						return err
					}
				}
				row++
			}
			total := []any{g.Name, emp.UserID, emp.Username, "Total", "", "", "", emp.Total.StringFixed(2),
				fmt.Sprintf("%d incomplete", emp.IncompleteDays)}
			if err := setRow(f, hoursSheet, row, total); err != nil {
				return err
			}
			if err := styleRow(f, hoursSheet, row, len(hoursHeader), st.total); err != nil {
				return err
			}
			row++
		}
	}
	if err := f.SetColWidth(hoursSheet, "A", "C", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(hoursSheet, "F", "G", 42); err != nil {
		return err
	}
	return f.SetPanes(hoursSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func dayRow(group string, emp workhours.EmployeeHours, d workhours.Day) []any {
	local := make([]string, len(d.Punches))
	rounded := make([]string, len(d.Punches))
	var flags []string
	for i, p := range d.Punches {
		local[i] = p.Local
		rounded[i] = p.Rounded
		for _, n := range p.Flags.Strings() {
			flags = append(flags, fmt.Sprintf("%s@%s", n, p.Local))
		}
	}
	return []any{
		group, emp.UserID, emp.Username, d.Date, d.Weekday,
		strings.Join(local, ", "), strings.Join(rounded, ", "),
		hoursCell(d.Hours), strings.Join(flags, "; "),
	}
}

// hoursCell keeps incomplete days visibly different from zero
func hoursCell(h workhours.Hours) any {
	switch h.Kind() {
	case workhours.KindIncomplete:
		return "MISSING PAIR"
	default:
		v, _ := h.Value()
		f, _ := v.Float64()
		return f
	}
}

func flagged(d workhours.Day) bool {
	for _, p := range d.Punches {
		if p.Flags != 0 {
			return true
		}
	}
	return false
}

func writeSummary(f *excelize.File, st styles, s workhours.Sheet) error {
	header := []any{"Group", "User ID", "Employee", "Total hours", "Incomplete days"}
	if err := setRow(f, summarySheet, 1, header); err != nil {
		return err
	}
	if err := styleRow(f, summarySheet, 1, len(header), st.header); err != nil {
		return err
	}
	row := 2
	for _, g := range s.Groups {
		for _, emp := range g.Employees {
			total, _ := emp.Total.Float64()
			if err := setRow(f, summarySheet, row, []any{g.Name, emp.UserID, emp.Username, total, emp.IncompleteDays}); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth(summarySheet, "A", "C", 18)
}
