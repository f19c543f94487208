package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sangkips/ecs-receipts/internal/gateway"
	"github.com/sangkips/ecs-receipts/internal/preview"
	"github.com/sangkips/ecs-receipts/internal/receipt"
)

func (a *app) statsCommand() *cobra.Command {
	var f gateway.StatsFilter
	var byDay bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show receipt totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			var (
				summary *receipt.Summary
				cats    []receipt.CategoryTotal
				days    []receipt.DayTotal
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() (err error) {
				summary, err = a.client.Summary(gctx, f)
				return err
			})
			g.Go(func() (err error) {
				cats, err = a.client.ByCategory(gctx, f)
				return err
			})
			if byDay {
				g.Go(func() (err error) {
					days, err = a.client.ByDay(gctx, f)
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Receipts: %d   Total: %s\n\n", summary.TotalReceipts, preview.FormatAmount(summary.TotalAmount))

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EMP\tNAME\tCOUNT\tAMOUNT")
			for _, e := range summary.ByEmployee {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.EmpCode, e.EmployeeName, e.Count, preview.FormatAmount(e.Amount))
			}
			fmt.Fprintln(tw, "\t\t\t")
			fmt.Fprintln(tw, "CATEGORY\t\tCOUNT\tAMOUNT")
			for _, c := range cats {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.Category, receipt.Category(c.Category).Label(), c.Count, preview.FormatAmount(c.Amount))
			}
			if byDay {
				fmt.Fprintln(tw, "\t\t\t")
				fmt.Fprintln(tw, "DAY\t\tCOUNT\tAMOUNT")
				for _, d := range days {
					fmt.Fprintf(tw, "%s\t\t%d\t%s\n", d.Day, d.Count, preview.FormatAmount(d.Amount))
				}
			}
			return tw.Flush()
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.From, "from", "", "first receipt date (YYYY-MM-DD)")
	fl.StringVar(&f.To, "to", "", "last receipt date (YYYY-MM-DD)")
	fl.StringVar(&f.EmpCode, "emp", "", "employee code")
	fl.BoolVar(&byDay, "by-day", false, "also list daily totals")
	return cmd
}
