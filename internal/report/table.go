package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/parbench/parbench/internal/bench"
	"github.com/parbench/parbench/pkg/types"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	failedStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("196")) // Red
	fastStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("46"))  // Green
)

// Table renders the run header, a duration table (rows are scales, columns
// are strategy-operation pairs) and a speedup table.
func Table(r *bench.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("parbench results"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Run:      "), r.RunID)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Machine:  "), r.Machine.String())
	fmt.Fprintf(&b, "%s %d\n", labelStyle.Render("Workers:  "), r.Workers)
	fmt.Fprintf(&b, "%s %g\n\n", labelStyle.Render("Threshold:"), r.Threshold)

	b.WriteString(durationTable(r))
	b.WriteString("\n")

	if st := speedupTable(r); st != "" {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Speedup vs sequential"))
		b.WriteString("\n")
		b.WriteString(st)
		b.WriteString("\n")
	}

	if lines := crossoverLines(r); len(lines) > 0 {
		b.WriteString("\n")
		for _, line := range lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func durationTable(r *bench.Report) string {
	columns := r.Columns()
	headers := append([]string{"scale", "samples"}, columns...)

	var rows [][]string
	failed := make(map[[2]int]bool)
	for ri, label := range r.ScaleLabels() {
		row := []string{label, ""}
		for ci, col := range columns {
			strategy, op := splitKey(col)
			rec, ok := r.Lookup(label, strategy, op)
			if !ok {
				row = append(row, "")
				continue
			}
			row[1] = fmt.Sprintf("%d", rec.Samples)
			row = append(row, formatCell(rec))
			if !rec.OK() {
				failed[[2]int{ri, ci + 2}] = true
			}
		}
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case failed[[2]int{row, col}]:
				return failedStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func speedupTable(r *bench.Report) string {
	keys := crossoverKeys(r)
	if len(keys) == 0 {
		return ""
	}

	headers := []string{"scale"}
	for _, k := range keys {
		headers = append(headers, string(k.strategy)+" "+string(k.op))
	}

	var rows [][]string
	faster := make(map[[2]int]bool)
	for ri, label := range r.ScaleLabels() {
		row := []string{label}
		for ci, k := range keys {
			s, ok := r.SpeedupAt(label, k.strategy, k.op)
			if !ok {
				row = append(row, "N/A")
				continue
			}
			row = append(row, fmt.Sprintf("%.2fx (eff %.0f%%)", s, bench.Efficiency(s, r.Workers)*100))
			if s > 1 {
				faster[[2]int{ri, ci + 1}] = true
			}
		}
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case faster[[2]int{row, col}]:
				return fastStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func crossoverLines(r *bench.Report) []string {
	var lines []string
	for _, k := range crossoverKeys(r) {
		label := r.Crossover(k.op, k.strategy)
		if label == "" {
			label = "never"
		}
		lines = append(lines, fmt.Sprintf("%s %s %s overtakes sequential at: %s",
			labelStyle.Render("Crossover:"), k.strategy, k.op, label))
	}
	return lines
}

func formatCell(rec types.Record) string {
	secs, ok := rec.Seconds()
	if !ok {
		return NotAvailable
	}
	return fmt.Sprintf("%.4fs", secs)
}

func splitKey(key string) (types.StrategyName, types.Operation) {
	strategy, op, _ := strings.Cut(key, " ")
	return types.StrategyName(strategy), types.Operation(op)
}
