package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
)

// PeriodsCmd creates the periods command
func PeriodsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "periods",
		Short: "List the predefined report periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			presets, err := period.MonthPresets(now, app.Cfg.MonthPresets)
			if err != nil {
				return err
			}

			season := model.CurrentSeason(now)
			rows := [][]any{
				{"Season to date", period.SeasonToDate(now).String(), "(default)"},
				{"Season " + season.String(), period.ForSeason(season).String(), "--season " + season.String()},
			}
			for _, p := range presets {
				rows = append(rows, []any{p.Label, p.Range.String(), "--month " + p.Range.From.Format(monthLayout)})
			}

			fmt.Println()
			printTable([]string{"period", "range", "flag"}, rows)
			fmt.Println()
			return nil
		},
	}
}
