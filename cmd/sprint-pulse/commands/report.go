package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sprint-pulse/internal/render"
	"sprint-pulse/internal/report"
	"sprint-pulse/internal/stats"
)

// reportFlags are the per-run overrides shared by report, history and risks.
type reportFlags struct {
	mode     string
	capacity float64
	today    string
	year     int
	format   string
}

func (f *reportFlags) register(cmd *cobra.Command, withMode bool) {
	if withMode {
		cmd.Flags().StringVar(&f.mode, "mode", "", "burndown mode: sprint or total (default from configuration)")
	}
	cmd.Flags().Float64Var(&f.capacity, "capacity", 0, "capacity per dev per day in hours, 1-10 (default CAPACITY_PER_DAY_HOURS)")
	cmd.Flags().StringVar(&f.today, "today", "", "evaluate as of this date, YYYY-MM-DD")
	cmd.Flags().IntVar(&f.year, "year", 0, "reference year for sprint names (default: year of --today)")
	cmd.Flags().StringVarP(&f.format, "format", "f", string(render.FormatMarkdown), "output format: json, markdown or table")
}

// options overlays the flags that were set onto defaults.
func (f *reportFlags) options(defaults report.Options) (report.Options, render.Format, error) {
	opts := defaults
	format, err := render.ParseFormat(f.format)
	if err != nil {
		return opts, "", err
	}
	if f.mode != "" {
		m, err := stats.ParseBurndownMode(f.mode)
		if err != nil {
			return opts, "", err
		}
		opts.Mode = m
	}
	if f.capacity != 0 {
		opts.CapacityPerDay = f.capacity
	}
	if f.today != "" {
		t, err := time.Parse("2006-01-02", f.today)
		if err != nil {
			return opts, "", fmt.Errorf("--today must be YYYY-MM-DD, got %q", f.today)
		}
		opts.Today = t
	}
	if f.year != 0 {
		opts.ReferenceYear = f.year
	}
	return opts, format, nil
}

func newReportCmd() *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "report <task-list-id>",
		Short: "Print the current-sprint report for one task list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, format, err := flags.options(reports.Defaults())
			if err != nil {
				return err
			}
			r, err := reports.Sprint(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return render.Sprint(os.Stdout, r, format)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "history <task-list-id>...",
		Short: "Print velocity, accuracy and status breakdown across several sprints",
		Long: `Print velocity, accuracy and status breakdown across several sprints.
Ids may be given as separate arguments or comma separated.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, format, err := flags.options(reports.Defaults())
			if err != nil {
				return err
			}
			h, err := reports.History(cmd.Context(), splitArgs(args), opts)
			if err != nil {
				return err
			}
			return render.History(os.Stdout, h, format)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newRisksCmd() *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "risks <task-list-id>",
		Short: "Print the capacity risk callouts for one sprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, format, err := flags.options(reports.Defaults())
			if err != nil {
				return err
			}
			r, err := reports.Risk(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return render.Risk(os.Stdout, r, format)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func splitArgs(args []string) []string {
	var out []string
	for _, a := range args {
		for _, id := range strings.Split(a, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}
