package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/AvaProtocol/gasless-vote/voter"
)

var (
	walletOwner string

	walletCmd = &cobra.Command{
		Use:   "wallet",
		Short: "show the smart wallet of an owner",
		Long:  `Resolve the counterfactual smart wallet address of --owner (default: the voter key) and whether it is deployed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := voter.NewFromConfig(configPath, voter.Options{})
			if err != nil {
				return err
			}
			defer v.Close()

			owner := v.Address()
			if walletOwner != "" {
				if !common.IsHexAddress(walletOwner) {
					return fmt.Errorf("invalid owner address %q", walletOwner)
				}
				owner = common.HexToAddress(walletOwner)
			}
			if owner == (common.Address{}) {
				return fmt.Errorf("pass --owner or configure a voter key")
			}

			w, err := v.Wallet(cmd.Context(), owner)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "owner:     %s\n", w.Owner.Hex())
			fmt.Fprintf(out, "wallet:    %s\n", w.Address.Hex())
			fmt.Fprintf(out, "factory:   %s\n", w.Factory.Hex())
			fmt.Fprintf(out, "salt:      %s\n", w.Salt.String())
			fmt.Fprintf(out, "chain:     %s\n", w.ChainID.String())
			fmt.Fprintf(out, "deployed:  %t\n", w.Deployed)
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.Flags().StringVar(&walletOwner, "owner", "", "owner EOA")
}
