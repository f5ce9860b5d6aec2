package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/genf/workreport/pkg/core/cost"
	"github.com/genf/workreport/pkg/core/period"
	"github.com/genf/workreport/pkg/core/pipeline"
)

var (
	headerColor = color.New(color.Bold)
	dimColor    = color.New(color.Faint)
	goodColor   = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	badColor    = color.New(color.FgRed)
)

// closeToGoal is the share of a goal at which progress is shown as nearly there
const closeToGoal = 0.75

// goalStatus picks one of three values by how far earned has come towards goal.
// A zero goal counts as reached.
func goalStatus[T any](earned, goal float64, reached, near, behind T) T {
	switch {
	case goal <= 0 || earned >= goal:
		return reached
	case earned >= goal*closeToGoal:
		return near
	default:
		return behind
	}
}

func goalColor(earned, goal float64) *color.Color {
	return goalStatus(earned, goal, goodColor, warnColor, badColor)
}

// deltaColor shows growth in green and decline in red
func deltaColor(delta float64) *color.Color {
	switch {
	case delta > 0:
		return goodColor
	case delta < 0:
		return badColor
	}
	return dimColor
}

// formatCell renders one table value the way the report sheets show it
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return fmt.Sprintf("%.2f", x)
	case *float64:
		if x == nil {
			return ""
		}
		return fmt.Sprintf("%.2f", *x)
	case time.Time:
		return x.Format(period.DateLayout)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(period.DateLayout)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// printTable prints rows under a bold header, each column padded to its widest cell
func printTable(headers []string, rows [][]any) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(headers))
		for i := range headers {
			if i < len(row) {
				cells[r][i] = formatCell(row[i])
			}
			if n := len([]rune(cells[r][i])); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i, h := range headers {
		headerColor.Printf("%-*s  ", widths[i], h)
	}
	fmt.Println()
	total := 0
	for _, w := range widths {
		total += w + 2
	}
	dimColor.Println(strings.Repeat("-", total))
	for _, row := range cells {
		for i, c := range row {
			fmt.Printf("%-*s  ", widths[i], c)
		}
		fmt.Println()
	}
}

func printTotals(label string, t pipeline.Totals) {
	fmt.Printf("%s\n", headerColor.Sprint(label))
	fmt.Printf("  Workers:    %d\n", t.UniqueWorkers)
	fmt.Printf("  Work logs:  %d\n", t.Records)
	fmt.Printf("  Hours:      %.2f\n", t.Hours)
	fmt.Printf("  Units:      %.2f\n", t.Units)
	fmt.Printf("  Total cost: %.2f kr\n", t.Cost)
}

func printComparison(cmp *pipeline.PeriodComparison) {
	if cmp == nil {
		return
	}
	fmt.Printf("\n%s %s\n", headerColor.Sprint("Compared with"), cmp.PreviousRange)
	line := func(name string, current, delta float64, unit string) {
		fmt.Printf("  %-10s %10.2f%s  %s\n", name, current, unit,
			deltaColor(delta).Sprintf("%+.2f", delta))
	}
	line("Hours", cmp.Current.Hours, cmp.Delta.Hours, "")
	line("Cost", cmp.Current.Cost, cmp.Delta.Cost, " kr")
	line("Workers", float64(cmp.Current.UniqueWorkers), float64(cmp.Delta.UniqueWorkers), "")
}

func printFailures(failures []cost.Failure) {
	if len(failures) == 0 {
		return
	}
	fmt.Printf("\n%s\n", warnColor.Sprintf("⚠️  %d work log(s) could not be priced:", len(failures)))
	for _, f := range failures {
		name := f.WorkerName
		if name == "" {
			name = f.RecordID
		}
		fmt.Printf("  ✗ %s (%s): %v\n", name, f.Season, f.Err)
	}
}
