package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lichas/cqhttp-go/internal/api"
	"github.com/Lichas/cqhttp-go/internal/bot"
	"github.com/Lichas/cqhttp-go/internal/bus"
	"github.com/Lichas/cqhttp-go/internal/cron"
	"github.com/Lichas/cqhttp-go/pkg/event"
	"github.com/Lichas/cqhttp-go/pkg/message"
)

type gatewayCall struct {
	Path   string
	Params map[string]interface{}
}

// fakeGateway 模拟 OneBot HTTP API
type fakeGateway struct {
	mu    sync.Mutex
	calls []gatewayCall
	reply string
}

func newFakeGateway(t *testing.T, reply string) (*fakeGateway, *api.API) {
	t.Helper()
	gw := &fakeGateway{reply: reply}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var params map[string]interface{}
		_ = json.Unmarshal(body, &params)
		gw.mu.Lock()
		gw.calls = append(gw.calls, gatewayCall{Path: r.URL.Path, Params: params})
		gw.mu.Unlock()
		_, _ = io.WriteString(w, gw.reply)
	}))
	t.Cleanup(srv.Close)
	return gw, api.New(api.NewClient(api.Options{APIRoot: srv.URL}))
}

func (g *fakeGateway) snapshot() []gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gatewayCall(nil), g.calls...)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "cqhttp v"+version)
}

func TestBuildSchedule(t *testing.T) {
	s, err := buildSchedule("every", "", 60000, "")
	require.NoError(t, err)
	assert.Equal(t, cron.ScheduleTypeEvery, s.Type)
	assert.Equal(t, int64(60000), s.EveryMs)

	s, err = buildSchedule("cron", "0 9 * * *", 0, "")
	require.NoError(t, err)
	assert.Equal(t, "0 9 * * *", s.Expr)

	s, err = buildSchedule("once", "", 0, "2030-01-02 03:04:05")
	require.NoError(t, err)
	want := time.Date(2030, 1, 2, 3, 4, 5, 0, time.Local).UnixMilli()
	assert.Equal(t, want, s.AtMs)

	for _, bad := range []struct{ kind, expr, at string }{
		{"cron", "", ""},
		{"once", "", ""},
		{"once", "", "tomorrow"},
		{"weekly", "", ""},
	} {
		_, err := buildSchedule(bad.kind, bad.expr, 0, bad.at)
		assert.Error(t, err, bad.kind)
	}
}

func TestBuildPayload(t *testing.T) {
	p := buildPayload(10, 0, 1, "hi")
	assert.Equal(t, cron.Payload{MessageType: cron.TargetGroup, TargetID: 10, SelfID: 1, Message: "hi"}, p)

	p = buildPayload(0, 20, 0, "hi")
	assert.Equal(t, cron.TargetPrivate, p.MessageType)
	assert.Equal(t, int64(20), p.TargetID)
}

func TestSendOnce(t *testing.T) {
	gw, a := newFakeGateway(t, `{"status":"ok","retcode":0,"data":{"message_id":42}}`)

	id, err := sendOnce(context.Background(), a, 10, 0, 1, "[CQ:face,id=1]hi", false)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = sendOnce(context.Background(), a, 0, 20, 1, "[not cq", true)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	calls := gw.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, "/send_group_msg", calls[0].Path)
	assert.Equal(t, "[CQ:face,id=1]hi", calls[0].Params["message"])
	assert.Equal(t, "/send_private_msg", calls[1].Path)
	assert.Equal(t, true, calls[1].Params["auto_escape"])
}

func TestSendOnceRejectsBadMarkup(t *testing.T) {
	gw, a := newFakeGateway(t, `{}`)
	_, err := sendOnce(context.Background(), a, 10, 0, 0, "[CQ:face,id=1", false)
	assert.ErrorIs(t, err, message.ErrUnterminatedCode)
	assert.Empty(t, gw.snapshot())
}

func TestProbe(t *testing.T) {
	_, a := newFakeGateway(t, `{"status":"ok","retcode":0,"data":{"online":true,"good":true}}`)
	online, err := probe(context.Background(), a)
	require.NoError(t, err)
	assert.True(t, online)

	_, a = newFakeGateway(t, `{"status":"ok","retcode":0,"data":{"online":false}}`)
	online, err = probe(context.Background(), a)
	require.NoError(t, err)
	assert.False(t, online)
}

func TestDeliverCronJob(t *testing.T) {
	queue := bus.NewQueue(4)
	b := bot.New(context.Background(), nil, queue)

	job := &cron.Job{ID: "j1", Payload: cron.Payload{MessageType: cron.TargetGroup, TargetID: 10, SelfID: 1, Message: "a&amp;b"}}
	require.NoError(t, deliverCronJob(b, job))

	out, ok := queue.TryConsumeOutbound()
	require.True(t, ok)
	assert.Equal(t, "group:10", out.Key())
	// 原样发送，不重新编码
	assert.Equal(t, "a&amp;b", out.Message)

	job.Payload.Message = "[CQ:at"
	assert.ErrorIs(t, deliverCronJob(b, job), message.ErrUnterminatedCode)
}

func privateEvent(text string) *event.PrivateMessage {
	ev := &event.PrivateMessage{}
	ev.PostType = event.PostMessage
	ev.MessageType = "private"
	ev.SelfID = 1
	ev.Sender.UserID = 30
	ev.UserID = 30
	ev.Message = text
	return ev
}

func TestBuiltinPing(t *testing.T) {
	gw, a := newFakeGateway(t, `{"status":"ok","retcode":0,"data":{"message_id":1}}`)
	b := bot.New(context.Background(), a.Caller(), nil)
	registerBuiltins(b, builtinOptions{Ping: true})

	b.HandleEvent(privateEvent("hello"))
	b.HandleEvent(privateEvent(" ping "))
	b.Wait()

	calls := gw.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "/send_private_msg", calls[0].Path)
	assert.Equal(t, "pong", calls[0].Params["message"])
	assert.Equal(t, float64(30), calls[0].Params["user_id"])
}

func TestBuiltinPingYieldsToSubscriber(t *testing.T) {
	gw, a := newFakeGateway(t, `{"status":"ok","retcode":0}`)
	b := bot.New(context.Background(), a.Caller(), nil)
	registerBuiltins(b, builtinOptions{Ping: true})
	b.Subscribe(event.NamePrivateMessage, func(ctx context.Context, c *bot.Context) error { return nil })

	b.HandleEvent(privateEvent("ping"))
	b.Wait()
	assert.Empty(t, gw.snapshot())
}

func TestBuiltinApprove(t *testing.T) {
	gw, a := newFakeGateway(t, `{"status":"ok","retcode":0}`)
	b := bot.New(context.Background(), a.Caller(), nil)
	registerBuiltins(b, builtinOptions{ApproveFriends: true, ApproveInvites: true})

	b.HandleEvent(&event.FriendRequest{Flag: "f1"})
	b.HandleEvent(&event.GroupRequest{Flag: "g-add", SubType: "add"})
	b.HandleEvent(&event.GroupRequest{Flag: "g-invite", SubType: "invite"})
	b.Wait()

	calls := gw.snapshot()
	require.Len(t, calls, 2)
	paths := []string{calls[0].Path, calls[1].Path}
	assert.ElementsMatch(t, []string{"/set_friend_add_request", "/set_group_add_request"}, paths)
	for _, c := range calls {
		if c.Path == "/set_group_add_request" {
			assert.Equal(t, "g-invite", c.Params["flag"])
		}
	}
}
