package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"DataPipeline/internal/domain"
	"DataPipeline/internal/usecase"
)

var (
	passText = color.New(color.FgGreen).SprintFunc()
	failText = color.New(color.FgRed).SprintFunc()
	noteText = color.New(color.FgYellow).SprintFunc()
)

// renderTable writes one bordered table with unwrapped cells.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewTable(w, tablewriter.WithRowAutoWrap(tw.WrapNone))
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	table.Header(cells...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

// printReport renders the per-category verdicts as a table followed by the
// overall status line.
func printReport(w io.Writer, outcome usecase.ValidationOutcome) error {
	var rows [][]string
	for _, c := range outcome.Report.Recorded() {
		res, _ := outcome.Report.Result(c)
		rows = append(rows, []string{string(c), verdict(res.Status), res.Message})
	}
	if err := renderTable(w, []string{"Category", "Status", "Message"}, rows); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s %s\n", verdict(outcome.Passed), outcome.Message)
	if outcome.RunID != "" {
		fmt.Fprintf(w, "run: %s\n", outcome.RunID)
	}
	return nil
}

func verdict(ok bool) string {
	if ok {
		return passText("PASS")
	}
	return failText("FAIL")
}

// printTransform lists the written output shape, the encoded columns and any
// diagnostics collected along the way.
func printTransform(w io.Writer, result usecase.TransformResult) error {
	if result.Dataset == nil {
		return nil
	}
	fmt.Fprintf(w, "rows: %d\n", result.Dataset.Len())
	fmt.Fprintf(w, "columns: %s\n", strings.Join(result.Dataset.Columns(), ", "))
	if len(result.Dropped) > 0 {
		fmt.Fprintf(w, "dropped: %s\n", strings.Join(result.Dropped, ", "))
	}

	if result.Tables.Len() > 0 {
		var rows [][]string
		for _, t := range result.Tables.Tables() {
			rows = append(rows, []string{t.Column(), strings.Join(t.Classes(), ", ")})
		}
		if err := renderTable(w, []string{"Column", "Classes"}, rows); err != nil {
			return err
		}
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintf(w, "%s %s: %s\n", noteText("note"), d.Step, d.Message)
	}
	return nil
}

// printLookups lists every stored code per column.
func printLookups(w io.Writer, tables domain.EncoderSet) error {
	if tables.Len() == 0 {
		fmt.Fprintln(w, "no lookups stored")
		return nil
	}
	var rows [][]string
	for _, t := range tables.Tables() {
		for code, value := range t.Classes() {
			rows = append(rows, []string{t.Column(), strconv.Itoa(code), value})
		}
	}
	return renderTable(w, []string{"Column", "Code", "Value"}, rows)
}
