package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/reyoung/mcphost/events"
	"github.com/reyoung/mcphost/process"
	"github.com/reyoung/mcphost/protocol"
	"github.com/reyoung/mcphost/store/prefs"
	"github.com/reyoung/mcphost/store/recovery"
)

func newTestClient(t *testing.T) protocol.WorkerHostClient {
	t.Helper()
	dir := t.TempDir()
	bc := events.NewBroadcaster(64)
	sup := process.NewSupervisor(bc, process.WithShell("/bin/sh"))
	rec, err := recovery.NewStore(dir)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	svr := grpc.NewServer()
	New(sup, bc, prefs.NewStore(dir), rec).Register(svr)
	go func() {
		_ = svr.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sup.Shutdown(ctx)
		bc.Close()
		svr.Stop()
	})
	return protocol.NewWorkerHostClient(conn)
}

func watch(t *testing.T, ctx context.Context, c protocol.WorkerHostClient, ids ...string) protocol.WorkerHost_WatchClient {
	t.Helper()
	values := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}
	req, err := structpb.NewStruct(map[string]interface{}{"ids": values})
	require.NoError(t, err)
	stream, err := c.Watch(ctx, req)
	require.NoError(t, err)
	md, err := stream.Header()
	require.NoError(t, err)
	require.Equal(t, []string{"true"}, md.Get(WatchingHeader))
	return stream
}

func nextEvent(t *testing.T, stream protocol.WorkerHost_WatchClient, kind process.EventKind) process.Event {
	t.Helper()
	for {
		msg, err := stream.Recv()
		require.NoError(t, err)
		e, err := protocol.EventFromStruct(msg)
		require.NoError(t, err)
		if e.Kind == kind {
			return e
		}
	}
}

func TestSpawnWriteWatchKill(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream := watch(t, ctx, c, "echo")

	pid, err := c.Spawn(ctx, protocol.ServerConfigToStruct(process.ServerConfig{ID: "echo", Command: "cat"}))
	require.NoError(t, err)
	assert.Positive(t, pid.GetValue())

	running, err := c.IsRunning(ctx, wrapperspb.String("echo"))
	require.NoError(t, err)
	assert.True(t, running.GetValue())

	_, err = c.Write(ctx, protocol.WriteRequestToStruct(protocol.WriteRequest{
		ID: "echo", Data: []byte("hello\n"), Timeout: time.Second,
	}))
	require.NoError(t, err)

	e := nextEvent(t, stream, process.EventStdout)
	assert.Equal(t, "echo", e.ServerID)
	assert.Equal(t, "hello", e.Data)

	list, err := c.List(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	statuses, err := protocol.StatusListFromStruct(list)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, int(pid.GetValue()), statuses[0].PID)
	assert.True(t, statuses[0].Running)

	_, err = c.Kill(ctx, wrapperspb.String("echo"))
	require.NoError(t, err)
	running, err = c.IsRunning(ctx, wrapperspb.String("echo"))
	require.NoError(t, err)
	assert.False(t, running.GetValue())

	_, err = c.Kill(ctx, wrapperspb.String("echo"))
	assert.NoError(t, err)
}

func TestExitCodeOverWatch(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream := watch(t, ctx, c)
	_, err := c.Spawn(ctx, protocol.ServerConfigToStruct(process.ServerConfig{
		ID: "fail", Command: "exit", Args: []string{"4"},
	}))
	require.NoError(t, err)

	e := nextEvent(t, stream, process.EventExit)
	assert.Equal(t, "fail", e.ServerID)
	require.NotNil(t, e.Code)
	assert.Equal(t, 4, *e.Code)
}

func TestErrorCodes(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := c.Write(ctx, protocol.WriteRequestToStruct(protocol.WriteRequest{ID: "ghost", Data: []byte("x")}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.Spawn(ctx, protocol.ServerConfigToStruct(process.ServerConfig{ID: "bad"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	cfg := protocol.ServerConfigToStruct(process.ServerConfig{ID: "twice", Command: "cat"})
	_, err = c.Spawn(ctx, cfg)
	require.NoError(t, err)
	_, err = c.Spawn(ctx, cfg)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = c.LoadRecovery(ctx, wrapperspb.String("../etc"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	_, err = c.LoadRecovery(ctx, wrapperspb.String("missing"))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.SavePreferences(ctx, protocol.PreferencesToStruct(prefs.Preferences{Theme: "neon"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestWriteTimeout(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := c.Spawn(ctx, protocol.ServerConfigToStruct(process.ServerConfig{
		ID: "deaf", Command: "sleep", Args: []string{"30"},
	}))
	require.NoError(t, err)

	_, err = c.Write(ctx, protocol.WriteRequestToStruct(protocol.WriteRequest{
		ID: "deaf", Data: make([]byte, 1<<20), Timeout: 200 * time.Millisecond,
	}))
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
}

func TestPreferencesAndRecovery(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, err := c.LoadPreferences(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, prefs.ThemeSystem, p.GetFields()["theme"].GetStringValue())

	_, err = c.SavePreferences(ctx, protocol.PreferencesToStruct(prefs.Preferences{Theme: prefs.ThemeDark}))
	require.NoError(t, err)
	p, err = c.LoadPreferences(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, prefs.ThemeDark, p.GetFields()["theme"].GetStringValue())

	req, err := protocol.RecoveryRequestToStruct(protocol.RecoveryRequest{
		Filename: "session", Data: []byte(`{"tabs":["a","b"]}`),
	})
	require.NoError(t, err)
	_, err = c.SaveRecovery(ctx, req)
	require.NoError(t, err)

	v, err := c.LoadRecovery(ctx, wrapperspb.String("session"))
	require.NoError(t, err)
	raw, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"tabs":["a","b"]}`, string(raw))

	removed, err := c.CleanupRecovery(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.Zero(t, removed.GetValue())
}

func TestWatchSurvivesNonUTF8Output(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream := watch(t, ctx, c, "binary")
	_, err := c.Spawn(ctx, protocol.ServerConfigToStruct(process.ServerConfig{
		ID: "binary", Command: `printf '\377\n'; echo ok`,
	}))
	require.NoError(t, err)

	first := nextEvent(t, stream, process.EventStdout)
	assert.Equal(t, "\xff", first.Data)
	second := nextEvent(t, stream, process.EventStdout)
	assert.Equal(t, "ok", second.Data)
	exit := nextEvent(t, stream, process.EventExit)
	require.NotNil(t, exit.Code)
	assert.Equal(t, 0, *exit.Code)
}
