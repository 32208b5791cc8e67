package harness

import (
	"bytes"
	"fmt"
	"io"

	"github.com/google/renameio"
	"github.com/olekukonko/tablewriter"
)

// PrintTable renders results as a comparison table, the same bare style
// table.go uses for dittofs's CLI output (internal/cli/output/table.go).
func PrintTable(w io.Writer, results []Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Semantic", "Account", "Start", "Final", "OK", "Failed"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, r := range results {
		table.Append([]string{
			r.Semantic,
			fmt.Sprintf("%d", r.AccountNo),
			fmt.Sprintf("%.2f", r.StartingBalance),
			fmt.Sprintf("%.2f", r.FinalBalance),
			fmt.Sprintf("%d", r.SuccessfulCalls),
			fmt.Sprintf("%d", r.FailedCalls),
		})
	}

	table.Render()
}

// WriteReport renders results the same way PrintTable does and writes them
// to path as a single atomic file replacement, so a reader never observes a
// half-written report (this is a load-once/write-once artifact, not an
// ongoing persistence layer for server state).
func WriteReport(path string, results []Result) error {
	var buf bytes.Buffer
	PrintTable(&buf, results)
	return renameio.WriteFile(path, buf.Bytes(), 0o644)
}
