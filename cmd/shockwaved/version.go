package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the shockwaved version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("shockwaved", version)
		return nil
	},
}
