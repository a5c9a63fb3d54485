package cmd

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/AvaProtocol/gasless-vote/core/config"
	"github.com/AvaProtocol/gasless-vote/model"
	"github.com/AvaProtocol/gasless-vote/storage"
)

var (
	historyVoter    string
	historyLimit    int
	historyProposal int64

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "list recorded vote attempts",
		Long: `List vote attempts recorded in the local journal, newest first.
With --proposal only the attempts of one voter (--voter, default the voter key) on that proposal are listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.NewConfig(configPath)
			if err != nil {
				return err
			}

			var voter common.Address
			if historyVoter != "" {
				if !common.IsHexAddress(historyVoter) {
					return fmt.Errorf("invalid voter address %q", historyVoter)
				}
				voter = common.HexToAddress(historyVoter)
			}

			db, err := storage.NewWithPath(c.DbPath)
			if err != nil {
				return fmt.Errorf("failed to open journal at %s: %w", c.DbPath, err)
			}
			defer db.Close()

			journal := storage.NewJournal(db, c.Logger)
			out := cmd.OutOrStdout()

			if historyProposal > math.MaxUint32 {
				return fmt.Errorf("proposal id %d out of range", historyProposal)
			}
			if historyProposal >= 0 {
				if voter == (common.Address{}) {
					voter = c.VoterAddress
				}
				if voter == (common.Address{}) {
					return fmt.Errorf("--proposal needs --voter or a configured voter key")
				}
				proposalID := uint32(historyProposal)
				total, err := journal.CountForProposal(voter, proposalID)
				if err != nil {
					return err
				}
				attempts, err := journal.ListForProposal(voter, proposalID)
				if err != nil {
					return err
				}
				printHistory(out, attempts, db.DbPath())
				fmt.Fprintf(out, "%d attempt(s) by %s on proposal %d\n", total, voter.Hex(), proposalID)
				return nil
			}

			attempts, err := journal.List(voter, historyLimit)
			if err != nil {
				return err
			}
			printHistory(out, attempts, db.DbPath())

			succeeded, err := journal.Count(model.AttemptSucceeded)
			if err != nil {
				return err
			}
			failed, err := journal.Count(model.AttemptFailed)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "totals: %d succeeded, %d failed\n", succeeded, failed)
			return nil
		},
	}
)

func printHistory(out io.Writer, attempts []*model.VoteAttempt, dbPath string) {
	fmt.Fprintf(out, "Vote history (%s)\n", dbPath)
	if len(attempts) == 0 {
		fmt.Fprintf(out, "   no vote attempts recorded\n")
		return
	}

	for i, a := range attempts {
		started := time.UnixMilli(a.StartedAt).UTC().Format(time.RFC3339)
		fmt.Fprintf(out, "%3d. %s proposal=%d choice=%s path=%s status=%s",
			i+1, started, a.ProposalID, a.Choice, a.Path, a.Status)
		if a.FellBack {
			fmt.Fprintf(out, " fellBack")
		}
		if a.Degraded {
			fmt.Fprintf(out, " degraded")
		}
		fmt.Fprintf(out, "\n      voter=%s", a.Voter.Hex())
		if a.UserOpHash != "" {
			fmt.Fprintf(out, " userOp=%s", a.UserOpHash)
		}
		if a.TxHash != "" {
			fmt.Fprintf(out, " tx=%s", a.TxHash)
		}
		if a.Error != "" {
			fmt.Fprintf(out, "\n      error[%s]: %s", a.ErrorKind, a.Error)
		}
		fmt.Fprintf(out, "\n")
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyVoter, "voter", "", "only show attempts of this voter")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum entries, 0 for all")
	historyCmd.Flags().Int64Var(&historyProposal, "proposal", -1, "only show attempts on this proposal id")
}
