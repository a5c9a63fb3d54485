package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/AvaProtocol/gasless-vote/core/sponsor"
	"github.com/AvaProtocol/gasless-vote/voter"
)

var (
	sponsorWatch time.Duration

	sponsorStatusCmd = &cobra.Command{
		Use:   "sponsor-status",
		Short: "show whether the paymaster can sponsor a vote",
		Long: `Read the paymaster deposit and current gas price, and report the estimated
cost of a vote and whether it would be sponsored.
Use --watch 30s to keep refreshing the coarse threshold.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := voter.NewFromConfig(configPath, voter.Options{})
			if err != nil {
				return err
			}
			defer v.Close()

			out := cmd.OutOrStdout()
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			verdict, err := v.SponsorStatus(ctx)
			printVerdict(out, verdict, err)

			if sponsorWatch <= 0 {
				return nil
			}

			affordance := v.Affordance(sponsorWatch)
			affordance.OnChange(func(s sponsor.Snapshot) {
				printSnapshot(out, s)
			})
			if err := affordance.Start(ctx); err != nil {
				return err
			}
			defer affordance.Stop()

			<-ctx.Done()
			return nil
		},
	}
)

func printVerdict(out io.Writer, v sponsor.Verdict, err error) {
	if err != nil {
		fmt.Fprintf(out, "sponsored:     false (%v)\n", err)
		return
	}
	fmt.Fprintf(out, "deposit:       %s ETH\n", sponsor.FormatEther(v.Deposit))
	fmt.Fprintf(out, "threshold:     %s ETH (met: %t)\n", sponsor.FormatEther(v.MinBalance), v.MeetsThreshold)
	fmt.Fprintf(out, "gas price:     %s wei\n", v.GasPrice.String())
	fmt.Fprintf(out, "vote cost:     %s ETH (covered: %t)\n", sponsor.FormatEther(v.EstimatedCost), v.CoversCost)
	if v.OK {
		fmt.Fprintf(out, "sponsored:     true\n")
	} else {
		fmt.Fprintf(out, "sponsored:     false (%s)\n", v.Reason)
	}
}

func printSnapshot(out io.Writer, s sponsor.Snapshot) {
	ts := s.CheckedAt.Format(time.RFC3339)
	if s.Err != nil {
		fmt.Fprintf(out, "[%s] threshold check failed: %v\n", ts, s.Err)
		return
	}
	fmt.Fprintf(out, "[%s] deposit %s ETH, gasless available: %t\n", ts, sponsor.FormatEther(s.Deposit), s.Available)
}

func init() {
	rootCmd.AddCommand(sponsorStatusCmd)
	sponsorStatusCmd.Flags().DurationVar(&sponsorWatch, "watch", 0, "refresh interval, 0 to print once")
}
