package cmd

import (
	"github.com/spf13/cobra"

	"arbo/logger"
	"arbo/trader"
)

var simulateCmd = cobra.Command{
	Use:   "simulate",
	Short: "Validate, build and simulate opportunities without sending",
	Run: func(cmd *cobra.Command, args []string) {
		logger.InitLogs("simulate")
		logger.GlobalLogger.Info("Running cmd simulate, no transaction will be sent")

		if err := trader.RunTraderCmd(trader.ModeSimulate); err != nil {
			logger.GlobalLogger.Error("Error running simulate command", "err", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(&simulateCmd)
}
