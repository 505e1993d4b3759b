package main

import (
	"os"

	cmd "github.com/pimukthee/dist-challenge/cmd/rumor/commands"
)

func main() {
	rootCmd := cmd.RootCmd

	rootCmd.AddCommand(
		cmd.NewBroadcastCmd(),
		cmd.NewEchoCmd(),
		cmd.NewUniqueIDsCmd(),
		cmd.VersionCmd)

	//Do not print usage when error occurs
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
