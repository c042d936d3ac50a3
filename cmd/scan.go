package cmd

import (
	"github.com/spf13/cobra"

	"arbo/logger"
	"arbo/trader"
)

var scanCmd = cobra.Command{
	Use:   "scan",
	Short: "Scan for cross-DEX arbitrage opportunities without trading",
	Run: func(cmd *cobra.Command, args []string) {
		logger.InitLogs("scan")
		logger.GlobalLogger.Info("Running cmd scan, opportunities are reported only")

		if err := trader.RunTraderCmd(trader.ModeScan); err != nil {
			logger.GlobalLogger.Error("Error running scan command", "err", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(&scanCmd)
}
