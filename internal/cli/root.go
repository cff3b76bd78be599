package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	logo    = `🐧`
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "cqhttp",
	Short: "cqhttp - OneBot (CQHTTP) bot runtime",
	Long:  fmt.Sprintf("%s cqhttp - receive OneBot events, dispatch handlers and call the HTTP API", logo),
}

// Execute 执行根命令
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd 版本命令
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s cqhttp v%s\n", logo, version)
	},
}
