package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var (
	configPath = "./config/voter.yaml"
	rootCmd    = &cobra.Command{
		Use:   "gasless-vote",
		Short: "Sponsored DAO vote CLI",
		Long: `Cast Azorius governance votes through an ERC-4337 bundler with a paymaster
covering gas, falling back to a regular transaction when sponsorship is not possible.

Such as "gasless-vote vote --proposal 42 --choice yes" or "gasless-vote sponsor-status"
`,
		SilenceUsage: true,
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/voter.yaml", "Path to config file")
}
