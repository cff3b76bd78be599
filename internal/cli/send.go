package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lichas/cqhttp-go/internal/api"
	"github.com/Lichas/cqhttp-go/internal/config"
	"github.com/Lichas/cqhttp-go/internal/logging"
	"github.com/Lichas/cqhttp-go/pkg/message"
)

var (
	sendGroup      int64
	sendUser       int64
	sendSelf       int64
	sendMessage    string
	sendAutoEscape bool
)

func init() {
	sendCmd.Flags().Int64VarP(&sendGroup, "group", "g", 0, "Target group id")
	sendCmd.Flags().Int64VarP(&sendUser, "user", "u", 0, "Target user id")
	sendCmd.Flags().Int64Var(&sendSelf, "self", 0, "Bot account to send from (defaults to api.selfId)")
	sendCmd.Flags().StringVarP(&sendMessage, "message", "m", "", "Message in CQ code (required)")
	sendCmd.Flags().BoolVar(&sendAutoEscape, "auto-escape", false, "Send as plain text without parsing CQ codes")
	sendCmd.MarkFlagRequired("message")
	sendCmd.MarkFlagsMutuallyExclusive("group", "user")
	sendCmd.MarkFlagsOneRequired("group", "user")
}

// sendCmd 直接调用 API 发送一条消息
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a message through the OneBot HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if _, err := logging.Init(config.GetDataDir()); err != nil {
			fmt.Printf("⚠ logging init error: %v\n", err)
		}

		selfID := sendSelf
		if selfID == 0 {
			selfID = cfg.API.SelfID
		}

		a := api.New(api.NewClient(api.Options{
			APIRoot:     cfg.API.Root,
			AccessToken: cfg.API.AccessToken,
			Timeout:     cfg.APITimeout(),
		}))

		id, err := sendOnce(cmd.Context(), a, sendGroup, sendUser, selfID, sendMessage, sendAutoEscape)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Sent message_id=%d\n", id)
		return nil
	},
}

// sendOnce 按目标选择群聊或私聊
func sendOnce(ctx context.Context, a *api.API, groupID, userID, selfID int64, text string, autoEscape bool) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	msg := message.Raw(text)
	if !autoEscape {
		if _, err := msg.Parse(); err != nil {
			return 0, fmt.Errorf("invalid message: %w", err)
		}
	}

	if groupID != 0 {
		return a.SendMsg(ctx, api.MsgGroup, groupID, 0, msg, autoEscape, selfID)
	}
	return a.SendMsg(ctx, api.MsgPrivate, 0, userID, msg, autoEscape, selfID)
}
