package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AvaProtocol/gasless-vote/core/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "print the effective config",
	Long:  `Print the config after defaults are applied. The voter key is never printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.NewConfig(configPath)
		if err != nil {
			return err
		}
		out, err := c.Redacted()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
