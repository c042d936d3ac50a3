package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"arbo/db"
	"arbo/logger"
	"arbo/utils"
)

var statsCmd = cobra.Command{
	Use:   "stats",
	Short: "Print recent execution attempts and skip totals from the journal",
	Run: func(cmd *cobra.Command, args []string) {
		ch := db.NewClickhouse()
		defer ch.Close()

		execs, err := ch.QueryRecentExecutions(20)
		if err != nil {
			logger.GlobalLogger.Error("Failed to query executions", "err", err)
			return
		}
		fmt.Printf("Last %d execution attempts:\n", len(execs))
		for _, rec := range execs {
			fmt.Printf("  %s  %-9s  %s->%s  %s/%s  %+d bps  %.4f USD  %s %s\n",
				rec.Timestamp.Format("2006-01-02 15:04:05"), rec.Outcome,
				utils.ShortMint(rec.BaseMint), utils.ShortMint(rec.IntermediateMint),
				rec.Dex1, rec.Dex2, rec.ProfitBps, rec.ProfitUSD,
				rec.Signature, rec.Detail)
		}

		totals, err := ch.QuerySkipTotals()
		if err != nil {
			logger.GlobalLogger.Error("Failed to query skip totals", "err", err)
			return
		}
		fmt.Println("\nSkip totals:")
		for reason, count := range totals {
			fmt.Printf("  %-28s %d\n", reason, count)
		}
	},
}

func init() {
	RootCmd.AddCommand(&statsCmd)
}
