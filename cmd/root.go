package cmd

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "arbo",
	Short: "A cross-DEX atomic arbitrage trader for Solana",
}
