package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lichas/cqhttp-go/internal/config"
	"github.com/Lichas/cqhttp-go/internal/cron"
	"github.com/Lichas/cqhttp-go/internal/logging"
)

var (
	cronName     string
	cronSchedule string
	cronMessage  string
	cronType     string
	cronEvery    int64
	cronAt       string
	cronGroup    int64
	cronUser     int64
	cronSelf     int64
)

func init() {
	cronAddCmd.Flags().StringVarP(&cronName, "name", "n", "", "Job name (required)")
	cronAddCmd.Flags().StringVarP(&cronType, "type", "t", "every", "Schedule type: every, cron, once")
	cronAddCmd.Flags().StringVarP(&cronSchedule, "schedule", "s", "", "Cron expression (for type=cron)")
	cronAddCmd.Flags().Int64VarP(&cronEvery, "every", "e", 3600000, "Interval in milliseconds (for type=every)")
	cronAddCmd.Flags().StringVarP(&cronAt, "at", "a", "", "Send at time (for type=once, format: 2006-01-02 15:04:05)")
	cronAddCmd.Flags().StringVarP(&cronMessage, "message", "m", "", "Message in CQ code (required)")
	cronAddCmd.Flags().Int64VarP(&cronGroup, "group", "g", 0, "Target group id")
	cronAddCmd.Flags().Int64VarP(&cronUser, "user", "u", 0, "Target user id")
	cronAddCmd.Flags().Int64Var(&cronSelf, "self", 0, "Bot account to send from")
	cronAddCmd.MarkFlagRequired("name")
	cronAddCmd.MarkFlagRequired("message")
	cronAddCmd.MarkFlagsMutuallyExclusive("group", "user")
	cronAddCmd.MarkFlagsOneRequired("group", "user")

	cronCmd.AddCommand(cronAddCmd)
	cronCmd.AddCommand(cronListCmd)
	cronCmd.AddCommand(cronRemoveCmd)
	cronCmd.AddCommand(cronEnableCmd)
	cronCmd.AddCommand(cronDisableCmd)
	cronCmd.AddCommand(cronStatusCmd)

	rootCmd.AddCommand(cronCmd)
}

// cronCmd cron 根命令
var cronCmd = &cobra.Command{
	Use:   "cron",
	Short: "Manage scheduled messages",
	Long:  "Add, list, remove and manage scheduled messages. They are sent while `cqhttp serve` is running.",
}

// openCronService 按配置打开任务存储
func openCronService() (*cron.Service, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if _, err := logging.Init(config.GetDataDir()); err != nil {
		fmt.Printf("⚠ logging init error: %v\n", err)
	}
	return cron.NewService(cfg.Cron.StorePath), nil
}

// buildSchedule 由命令行参数构建调度配置
func buildSchedule(kind, expr string, everyMs int64, at string) (cron.Schedule, error) {
	switch kind {
	case "every":
		return cron.Schedule{Type: cron.ScheduleTypeEvery, EveryMs: everyMs}, nil
	case "cron":
		if expr == "" {
			return cron.Schedule{}, fmt.Errorf("--schedule is required for type=cron")
		}
		return cron.Schedule{Type: cron.ScheduleTypeCron, Expr: expr}, nil
	case "once":
		if at == "" {
			return cron.Schedule{}, fmt.Errorf("--at is required for type=once")
		}
		t, err := time.ParseInLocation("2006-01-02 15:04:05", at, time.Local)
		if err != nil {
			return cron.Schedule{}, fmt.Errorf("invalid time format, use: 2006-01-02 15:04:05")
		}
		return cron.Schedule{Type: cron.ScheduleTypeOnce, AtMs: t.UnixMilli()}, nil
	default:
		return cron.Schedule{}, fmt.Errorf("invalid type: %s, use: every, cron, or once", kind)
	}
}

// buildPayload 由命令行参数构建消息
func buildPayload(groupID, userID, selfID int64, text string) cron.Payload {
	p := cron.Payload{SelfID: selfID, Message: text}
	if groupID != 0 {
		p.MessageType = cron.TargetGroup
		p.TargetID = groupID
	} else {
		p.MessageType = cron.TargetPrivate
		p.TargetID = userID
	}
	return p
}

// cronAddCmd 添加任务
var cronAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a scheduled message",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := openCronService()
		if err != nil {
			return err
		}

		schedule, err := buildSchedule(cronType, cronSchedule, cronEvery, cronAt)
		if err != nil {
			return err
		}

		job, err := service.AddJob(cronName, schedule, buildPayload(cronGroup, cronUser, cronSelf, cronMessage))
		if err != nil {
			return fmt.Errorf("failed to add job: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Job added: %s (%s)\n", job.Name, job.ID)
		fmt.Fprintf(out, "  Target: %s %d\n", job.Payload.MessageType, job.Payload.TargetID)
		switch job.Schedule.Type {
		case cron.ScheduleTypeEvery:
			fmt.Fprintf(out, "  Every: %d ms\n", job.Schedule.EveryMs)
		case cron.ScheduleTypeCron:
			fmt.Fprintf(out, "  Expression: %s\n", job.Schedule.Expr)
		case cron.ScheduleTypeOnce:
			fmt.Fprintf(out, "  At: %s\n", time.UnixMilli(job.Schedule.AtMs).Format("2006-01-02 15:04:05"))
		}
		if next, ok := job.NextRun(time.Now()); ok {
			fmt.Fprintf(out, "  Next run: %s\n", next.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

// cronListCmd 列出任务
var cronListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all scheduled messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := openCronService()
		if err != nil {
			return err
		}

		jobs := service.ListJobs()
		if len(jobs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No scheduled jobs")
			return nil
		}

		now := time.Now()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tTARGET\tSTATUS\tNEXT RUN")
		for _, job := range jobs {
			status := "disabled"
			if job.Enabled {
				status = "enabled"
			}
			nextRun := "-"
			if t, ok := job.NextRun(now); ok {
				nextRun = t.Format("01-02 15:04")
			}
			target := fmt.Sprintf("%s:%d", job.Payload.MessageType, job.Payload.TargetID)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", job.ID, job.Name, job.Schedule.Type, target, status, nextRun)
		}
		return w.Flush()
	},
}

// cronRemoveCmd 删除任务
var cronRemoveCmd = &cobra.Command{
	Use:   "remove [job-id]",
	Short: "Remove a scheduled message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := openCronService()
		if err != nil {
			return err
		}
		if err := service.RemoveJob(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Job removed: %s\n", args[0])
		return nil
	},
}

// cronEnableCmd 启用任务
var cronEnableCmd = &cobra.Command{
	Use:   "enable [job-id]",
	Short: "Enable a scheduled message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setJobEnabled(cmd, args[0], true)
	},
}

// cronDisableCmd 禁用任务
var cronDisableCmd = &cobra.Command{
	Use:   "disable [job-id]",
	Short: "Disable a scheduled message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setJobEnabled(cmd, args[0], false)
	},
}

func setJobEnabled(cmd *cobra.Command, id string, enabled bool) error {
	service, err := openCronService()
	if err != nil {
		return err
	}
	if _, err := service.EnableJob(id, enabled); err != nil {
		return err
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Job %s: %s\n", state, id)
	return nil
}

// cronStatusCmd 查看状态
var cronStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show scheduled message store status",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := openCronService()
		if err != nil {
			return err
		}
		printCronStatus(cmd, service.Status())
		return nil
	},
}

func printCronStatus(cmd *cobra.Command, status map[string]interface{}) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Cron:\n")
	fmt.Fprintf(out, "  Total Jobs: %d\n", status["totalJobs"])
	fmt.Fprintf(out, "  Enabled Jobs: %d\n", status["enabledJobs"])
	fmt.Fprintf(out, "  Store Path: %s\n", status["storePath"])
	if next, ok := status["nextRun"].(string); ok {
		fmt.Fprintf(out, "  Next Run: %s\n", strings.Replace(next, "T", " ", 1))
	}
}
