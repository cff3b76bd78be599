package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Lichas/cqhttp-go/internal/api"
	"github.com/Lichas/cqhttp-go/internal/bot"
	"github.com/Lichas/cqhttp-go/internal/bus"
	"github.com/Lichas/cqhttp-go/internal/config"
	"github.com/Lichas/cqhttp-go/internal/cron"
	"github.com/Lichas/cqhttp-go/internal/logging"
	"github.com/Lichas/cqhttp-go/internal/server"
	"github.com/Lichas/cqhttp-go/pkg/message"
)

var (
	servePort     int
	serveBuiltins builtinOptions
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (overrides config)")
	serveCmd.Flags().BoolVar(&serveBuiltins.Ping, "ping", true, "Reply pong to ping")
	serveCmd.Flags().BoolVar(&serveBuiltins.ApproveFriends, "approve-friends", false, "Approve every friend request")
	serveCmd.Flags().BoolVar(&serveBuiltins.ApproveInvites, "approve-invites", false, "Accept every group invitation")
}

// serveCmd 启动上报接收、事件分发与定时消息
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start receiving events and dispatching handlers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if servePort > 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		lg, err := logging.Init(config.GetDataDir())
		if err != nil {
			fmt.Printf("⚠ logging init error: %v\n", err)
		}
		defer lg.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runServe(ctx, cfg, serveBuiltins)
	},
}

// runServe 组装并运行所有组件，直到 ctx 结束
func runServe(ctx context.Context, cfg *config.Config, builtins builtinOptions) error {
	if lg := logging.Get(); lg != nil && lg.Server != nil {
		lg.Server.Printf("serve starting api=%s port=%d ws=%v", cfg.API.Root, cfg.Server.Port, cfg.WebSocket.Enabled)
	}

	fmt.Printf("%s Starting cqhttp on %s:%d...\n\n", logo, cfg.Server.Host, cfg.Server.Port)

	client := api.NewClient(api.Options{
		APIRoot:     cfg.API.Root,
		AccessToken: cfg.API.AccessToken,
		Timeout:     cfg.APITimeout(),
	})
	queue := bus.NewQueue(cfg.Bus.BufferSize)

	g, gctx := errgroup.WithContext(ctx)

	b := bot.New(gctx, client, queue)
	registerBuiltins(b, builtins)

	srv := server.New(server.Options{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		Path:         cfg.Server.Path,
		Secret:       cfg.Server.Secret,
		AccessToken:  cfg.API.AccessToken,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		WebSocket:    cfg.WebSocket.Enabled,
		WSPath:       cfg.WebSocket.Path,
		AllowOrigins: cfg.WebSocket.AllowOrigins,
	}, queue)
	if err := srv.Start(gctx); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	fmt.Printf("✓ Listening on %s (post %s)\n", srv.Addr(), cfg.Server.Path)
	if cfg.WebSocket.Enabled {
		fmt.Printf("✓ Reverse WebSocket at %s\n", cfg.WebSocket.Path)
	}
	if cfg.Server.Secret == "" {
		fmt.Println("⚠ Warning: no secret configured, X-Signature is not checked")
	}

	var cronService *cron.Service
	if cfg.Cron.Enabled {
		cronService = cron.NewService(cfg.Cron.StorePath)
		cronService.SetJobHandler(func(ctx context.Context, job *cron.Job) error {
			return deliverCronJob(b, job)
		})
		if err := cronService.Start(); err != nil {
			fmt.Printf("⚠ Failed to start cron service: %v\n", err)
		} else {
			status := cronService.Status()
			fmt.Printf("✓ Cron jobs: %d total, %d enabled\n", status["totalJobs"], status["enabledJobs"])
		}
	}

	fmt.Println("✓ Ready")
	fmt.Println("\nPress Ctrl+C to stop")

	g.Go(func() error {
		return b.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		fmt.Println("\nShutting down...")
		if cronService != nil {
			cronService.Stop()
		}
		err := srv.Stop()
		queue.Close()
		return err
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if lg := logging.Get(); lg != nil && lg.Server != nil {
		lg.Server.Printf("serve stopped err=%v status=%v", err, srv.Status())
	}
	return err
}

// deliverCronJob 校验任务消息并放入出站队列
func deliverCronJob(b *bot.Bot, job *cron.Job) error {
	msg := message.Raw(job.Payload.Message)
	if _, err := msg.Parse(); err != nil {
		return fmt.Errorf("job %s: %w", job.ID, err)
	}
	return b.SendTo(job.Payload.MessageType, job.Payload.TargetID, job.Payload.SelfID, msg)
}
