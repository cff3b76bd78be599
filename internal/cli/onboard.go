package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lichas/cqhttp-go/internal/config"
)

// onboardCmd 初始化命令
var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize cqhttp configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.GetConfigPath()
		out := cmd.OutOrStdout()

		if _, err := os.Stat(configPath); err == nil {
			fmt.Fprintf(out, "Config already exists at %s\n", configPath)
			fmt.Fprint(out, "Overwrite? (y/N): ")
			response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			response = strings.TrimSpace(response)
			if response != "y" && response != "Y" {
				return nil
			}
		}

		cfg := config.DefaultConfig()
		if err := config.SaveConfig(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(out, "✓ Created config at %s\n", configPath)

		if err := os.MkdirAll(filepath.Dir(cfg.Cron.StorePath), 0755); err != nil {
			return fmt.Errorf("failed to create cron directory: %w", err)
		}
		fmt.Fprintf(out, "✓ Created cron store directory %s\n", filepath.Dir(cfg.Cron.StorePath))

		fmt.Fprintf(out, "\n%s cqhttp is ready!\n\n", logo)
		fmt.Fprintln(out, "Next steps:")
		fmt.Fprintf(out, "  1. Point api.root in %s at your OneBot HTTP API\n", configPath)
		fmt.Fprintf(out, "  2. Set the gateway's post url to http://<host>:%d%s\n", cfg.Server.Port, cfg.Server.Path)
		fmt.Fprintln(out, "  3. Run: cqhttp serve")
		return nil
	},
}
