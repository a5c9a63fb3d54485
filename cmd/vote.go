package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/AvaProtocol/gasless-vote/core/config"
	"github.com/AvaProtocol/gasless-vote/core/pipeline"
	"github.com/AvaProtocol/gasless-vote/core/vote"
	"github.com/AvaProtocol/gasless-vote/model"
	"github.com/AvaProtocol/gasless-vote/voter"
)

var (
	voteProposal uint32
	voteChoice   string
	voteStandard bool
	voteTokens   []string
	voteWait     bool
	voteYes      bool

	voteCmd = &cobra.Command{
		Use:   "vote",
		Short: "cast a vote on an Azorius proposal",
		Long: `Cast a vote, sponsored by the paymaster when its deposit covers the cost.
Use --standard to pay gas yourself, --wait to wait for on-chain inclusion.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			choice, err := model.ParseVoteChoice(voteChoice)
			if err != nil {
				return err
			}
			tokens, err := parseTokens(voteTokens)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			prompt := newTerminalPrompter(cmd.InOrStdin(), out, voteYes)
			v, err := voter.NewFromConfig(configPath, voter.Options{
				ConfirmSignature: prompt.ConfirmSignature,
				Prompter:         prompt,
				Notifier:         printNotifier(out),
			})
			if err != nil {
				return err
			}
			defer v.Close()

			intent := &model.VoteIntent{
				ProposalID: voteProposal,
				Choice:     choice,
				Voter:      v.Address(),
				Tokens:     tokens,
			}

			res, err := v.Vote(ctx, intent, voteStandard)
			if err != nil {
				if res != nil && !res.Eligibility.Eligible && res.Eligibility.Reason != "" {
					return fmt.Errorf("cannot vote: %s", res.Eligibility.Reason)
				}
				if errors.Is(err, vote.ErrNotEligible) {
					return err
				}
				return fmt.Errorf("vote %s: %w", pipeline.Classify(err), err)
			}

			fmt.Fprintf(out, "path:      %s\n", res.Path)
			if res.FellBack {
				fmt.Fprintf(out, "fallback:  sponsorship rejected, sent as a regular transaction\n")
			}
			if res.Degraded {
				fmt.Fprintf(out, "warning:   wallet deployment check failed, %s policy applied\n", v.Config().DeploymentPolicy)
			}
			if res.Path == model.PathGasless {
				fmt.Fprintf(out, "sender:    %s\n", res.Sender.Hex())
				fmt.Fprintf(out, "userOp:    %s\n", res.UserOpHash)
			} else {
				fmt.Fprintf(out, "tx:        %s\n", res.TxHash.Hex())
			}

			if !voteWait {
				return nil
			}
			fmt.Fprintf(out, "waiting for inclusion...\n")
			txHash, err := v.WaitForInclusion(ctx, res)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "included:  %s\n", txHash)
			if url := config.TxURL(v.ChainID(), txHash); url != "" {
				fmt.Fprintf(out, "explorer:  %s\n", url)
			}
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(voteCmd)

	voteCmd.Flags().Uint32Var(&voteProposal, "proposal", 0, "proposal id")
	voteCmd.Flags().StringVar(&voteChoice, "choice", "", "yes, no or abstain")
	voteCmd.Flags().BoolVar(&voteStandard, "standard", false, "skip sponsorship and pay gas from the voter key")
	voteCmd.Flags().StringArrayVar(&voteTokens, "token", nil, "NFT to vote with as 0xaddress:id, repeatable")
	voteCmd.Flags().BoolVar(&voteWait, "wait", false, "wait for the vote to be included on-chain")
	voteCmd.Flags().BoolVarP(&voteYes, "yes", "y", false, "answer yes to every confirmation")
	_ = voteCmd.MarkFlagRequired("proposal")
	_ = voteCmd.MarkFlagRequired("choice")
}
