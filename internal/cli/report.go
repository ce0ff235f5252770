package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportOverdueCmd)
	reportCmd.AddCommand(reportTopToolsCmd)

	reportTopToolsCmd.Flags().String("from", "", "Start date (YYYY-MM-DD), defaults to 30 days ago")
	reportTopToolsCmd.Flags().String("to", "", "End date (YYYY-MM-DD), defaults to now")
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print rental reports",
}

var reportOverdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List customers holding overdue loans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		customers, err := a.report.OverdueCustomers(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tRUT\tNAME\tPHONE")
		for _, c := range customers {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Rut, c.Name, c.Phone)
		}
		return w.Flush()
	},
}

var reportTopToolsCmd = &cobra.Command{
	Use:   "top-tools",
	Short: "Rank tool groups by loans started in a range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		to := time.Now().UTC()
		from := to.AddDate(0, 0, -30)
		if v, _ := cmd.Flags().GetString("from"); v != "" {
			t, err := time.Parse(time.DateOnly, v)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			from = t
		}
		if v, _ := cmd.Flags().GetString("to"); v != "" {
			t, err := time.Parse(time.DateOnly, v)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}
			to = t.Add(24*time.Hour - time.Nanosecond)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ranking, err := a.report.TopTools(cmd.Context(), from, to)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "GROUP\tNAME\tCATEGORY\tLOANS")
		for _, tc := range ranking {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", tc.Group.ID, tc.Group.Name, tc.Group.Category, tc.Count)
		}
		return w.Flush()
	},
}
