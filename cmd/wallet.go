package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"arbo/sol"
)

var walletCmd = cobra.Command{
	Use:   "wallet",
	Short: "Generate a fresh keypair for the trader",
	Run: func(cmd *cobra.Command, args []string) {
		w := sol.NewWallet()
		fmt.Println("Public key: ", w.PublicKey())
		fmt.Println("Private key:", w.PrivateKeyBase58())
		fmt.Println()
		fmt.Println("Put the private key into .env as WALLET_PRIVATE_KEY and fund the public key before trading.")
	},
}

func init() {
	RootCmd.AddCommand(&walletCmd)
}
