package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lichas/cqhttp-go/internal/api"
	"github.com/Lichas/cqhttp-go/internal/config"
	"github.com/Lichas/cqhttp-go/internal/cron"
)

var statusProbe bool

func init() {
	statusCmd.Flags().BoolVar(&statusProbe, "probe", true, "Call get_status on the OneBot API")
}

// statusCmd 状态命令
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cqhttp status",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.GetConfigPath()
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "%s cqhttp Status\n\n", logo)

		if _, err := os.Stat(configPath); err == nil {
			fmt.Fprintf(out, "Config: %s ✓\n", configPath)
		} else {
			fmt.Fprintf(out, "Config: %s ✗ (not found, using defaults)\n", configPath)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(out, "Config check: ✗ %v\n", err)
		}

		fmt.Fprintf(out, "API root: %s\n", cfg.API.Root)
		if cfg.API.AccessToken != "" {
			fmt.Fprintln(out, "Access token: ✓")
		} else {
			fmt.Fprintln(out, "Access token: ✗ (not set)")
		}
		if cfg.Server.Secret != "" {
			fmt.Fprintln(out, "Signature secret: ✓")
		} else {
			fmt.Fprintln(out, "Signature secret: ✗ (not set)")
		}

		fmt.Fprintf(out, "Listen: %s:%d%s\n", cfg.Server.Host, cfg.Server.Port, cfg.Server.Path)
		if cfg.WebSocket.Enabled {
			fmt.Fprintf(out, "Reverse WebSocket: ✓ %s\n", cfg.WebSocket.Path)
		} else {
			fmt.Fprintln(out, "Reverse WebSocket: ✗ disabled")
		}

		if statusProbe {
			client := api.NewClient(api.Options{
				APIRoot:     cfg.API.Root,
				AccessToken: cfg.API.AccessToken,
				Timeout:     3 * time.Second,
			})
			if online, err := probe(cmd.Context(), api.New(client)); err != nil {
				fmt.Fprintf(out, "Gateway: ✗ %v\n", err)
			} else if online {
				fmt.Fprintln(out, "Gateway: ✓ online")
			} else {
				fmt.Fprintln(out, "Gateway: ⚠ reachable but offline")
			}
		}

		fmt.Fprintln(out)
		if cfg.Cron.Enabled {
			printCronStatus(cmd, cron.NewService(cfg.Cron.StorePath).Status())
		} else {
			fmt.Fprintln(out, "Cron: ✗ disabled")
		}
		return nil
	},
}

// probe 调用 get_status，返回网关是否在线
func probe(ctx context.Context, a *api.API) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := a.Call(ctx, "get_status", struct{}{})
	if err != nil {
		return false, err
	}
	var status struct {
		Online bool `json:"online"`
		Good   bool `json:"good"`
	}
	if len(resp.Data) > 0 {
		_ = json.Unmarshal(resp.Data, &status)
	}
	return status.Online || status.Good, nil
}
