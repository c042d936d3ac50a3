package cmd

import (
	"github.com/spf13/cobra"

	"arbo/logger"
	"arbo/trader"
)

var liveCmd = cobra.Command{
	Use:   "live",
	Short: "Trade live: validate, build, simulate, send and confirm",
	Run: func(cmd *cobra.Command, args []string) {
		logger.InitLogs("live")
		logger.GlobalLogger.Info("Running cmd live, REAL transactions will be sent")

		if err := trader.RunTraderCmd(trader.ModeLive); err != nil {
			logger.GlobalLogger.Error("Error running live command", "err", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(&liveCmd)
}
