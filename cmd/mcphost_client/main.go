package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"emperror.dev/emperror"
	"github.com/docopt/docopt-go"
	"golang.org/x/term"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/reyoung/mcphost/config"
	"github.com/reyoung/mcphost/process"
	"github.com/reyoung/mcphost/protocol"
	"github.com/reyoung/mcphost/store/prefs"
)

const docs = `MCP Host Client

Usage:
    mcphost_client [--address=<a>] spawn <server> [--env=<e>]... [--dir=<dir>] -- <command> [<args>]...
    mcphost_client [--address=<a>] write <server> [--timeout=<t>] [<data>]
    mcphost_client [--address=<a>] kill <server>
    mcphost_client [--address=<a>] status <server>
    mcphost_client [--address=<a>] list
    mcphost_client [--address=<a>] watch [<servers>]...
    mcphost_client [--address=<a>] prefs [--theme=<t>]
    mcphost_client [--address=<a>] recovery save <filename> [<file>]
    mcphost_client [--address=<a>] recovery load <filename>
    mcphost_client [--address=<a>] recovery cleanup
    mcphost_client -h | --help
    mcphost_client --version

Options:
    -h --help                 Show this screen.
    --version                 Show version.
    --address=<a>             Server address, defaults to $MCPHOST_LISTEN or 127.0.0.1:8999.
    --env=<e>                 Environment variables. format are "key=value".
    --dir=<dir>               Working directory of the server.
    --timeout=<t>             Write timeout, e.g. 500ms. Empty uses the host default.
    --theme=<t>               Set the theme: light, dark or system.
    <server>                  Server id.
    <command>                 Command to run in the login shell.
    <args>                    Arguments of command.
    <data>                    Line to write, read from stdin when omitted.
    <file>                    JSON document to save, read from stdin when omitted.
`

const callTimeout = 10 * time.Second

func panic2[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func str(arguments docopt.Opts, key string) string {
	v, _ := arguments[key].(string)
	return v
}

func address(arguments docopt.Opts) string {
	if a := str(arguments, "--address"); a != "" {
		return a
	}
	if a := os.Getenv(config.EnvListen); a != "" {
		return a
	}
	return config.DefaultListen
}

func parseEnv(envs []string) map[string]string {
	if len(envs) == 0 {
		return nil
	}
	res := make(map[string]string, len(envs))
	for _, env := range envs {
		kvs := strings.SplitN(env, "=", 2)
		if len(kvs) != 2 {
			panic(fmt.Sprintf("invalid env, %s", env))
		}
		res[kvs[0]] = kvs[1]
	}
	return res
}

func doSpawn(ctx context.Context, arguments docopt.Opts, client protocol.WorkerHostClient) {
	cfg := process.ServerConfig{
		ID:      str(arguments, "<server>"),
		Command: str(arguments, "<command>"),
		Args:    arguments["<args>"].([]string),
		Env:     parseEnv(arguments["--env"].([]string)),
		Dir:     str(arguments, "--dir"),
	}
	pid := panic2(client.Spawn(ctx, protocol.ServerConfigToStruct(cfg)))
	fmt.Printf("%s spawned, pid %d\n", cfg.ID, pid.GetValue())
}

func writeLine(ctx context.Context, client protocol.WorkerHostClient, id string, timeout time.Duration, data string) {
	if !strings.HasSuffix(data, "\n") {
		data += "\n"
	}
	_ = panic2(client.Write(ctx, protocol.WriteRequestToStruct(protocol.WriteRequest{
		ID: id, Data: []byte(data), Timeout: timeout,
	})))
}

func doWrite(ctx context.Context, arguments docopt.Opts, client protocol.WorkerHostClient) {
	id := str(arguments, "<server>")
	var timeout time.Duration
	if t := str(arguments, "--timeout"); t != "" {
		timeout = panic2(time.ParseDuration(t))
	}
	if data := str(arguments, "<data>"); data != "" {
		writeLine(ctx, client, id, timeout, data)
		return
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		data := panic2(io.ReadAll(os.Stdin))
		if len(data) == 0 {
			return
		}
		_ = panic2(client.Write(ctx, protocol.WriteRequestToStruct(protocol.WriteRequest{
			ID: id, Data: data, Timeout: timeout,
		})))
		return
	}

	// interactive: one request per line until EOF
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprintf(os.Stderr, "%s> ", id)
	for scanner.Scan() {
		writeLine(ctx, client, id, timeout, scanner.Text())
		fmt.Fprintf(os.Stderr, "%s> ", id)
	}
	emperror.Panic(scanner.Err())
}

func doStatus(ctx context.Context, arguments docopt.Opts, client protocol.WorkerHostClient) int {
	id := str(arguments, "<server>")
	running := panic2(client.IsRunning(ctx, wrapperspb.String(id)))
	if running.GetValue() {
		fmt.Printf("%s is running\n", id)
		return 0
	}
	fmt.Printf("%s is not running\n", id)
	return 1
}

func doList(ctx context.Context, client protocol.WorkerHostClient) {
	list := panic2(protocol.StatusListFromStruct(panic2(client.List(ctx, &emptypb.Empty{}))))
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		enc := json.NewEncoder(os.Stdout)
		for _, st := range list {
			emperror.Panic(enc.Encode(st))
		}
		return
	}
	for _, st := range list {
		state := "running"
		if !st.Running {
			state = "exited"
			if st.ExitCode != nil {
				state = fmt.Sprintf("exited(%d)", *st.ExitCode)
			}
		}
		fmt.Printf("%-20s %-8d %-12s %s %s\n", st.Name, st.PID, state,
			st.Started.Local().Format(time.DateTime), strings.Join(append([]string{st.Command}, st.Args...), " "))
	}
}

// doWatch prints events until interrupted. When watching a single server it
// returns that server's exit code once it exits.
func doWatch(ctx context.Context, arguments docopt.Opts, client protocol.WorkerHostClient) int {
	ids := arguments["<servers>"].([]string)
	values := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}
	req := panic2(structpb.NewStruct(map[string]interface{}{"ids": values}))
	stream := panic2(client.Watch(ctx, req))
	pretty := term.IsTerminal(int(os.Stdout.Fd()))

	for {
		msg, err := stream.Recv()
		if err != nil {
			if err == io.EOF || ctx.Err() != nil {
				return 0
			}
			panic(err)
		}
		if !pretty {
			fmt.Println(string(panic2(msg.MarshalJSON())))
		}
		e := panic2(protocol.EventFromStruct(msg))
		switch e.Kind {
		case process.EventStdout:
			if pretty {
				fmt.Printf("[%s] %s\n", e.ServerID, e.Data)
			}
		case process.EventStderr:
			if pretty {
				fmt.Fprintf(os.Stderr, "[%s] %s\n", e.ServerID, e.Data)
			}
		case process.EventExit:
			code := 128 + int(syscall.SIGKILL)
			if e.Code != nil {
				code = *e.Code
			}
			if pretty {
				fmt.Fprintf(os.Stderr, "[%s] exited with code %d\n", e.ServerID, code)
			}
			if len(ids) == 1 {
				return code
			}
		}
	}
}

func doPrefs(ctx context.Context, arguments docopt.Opts, client protocol.WorkerHostClient) {
	if theme := str(arguments, "--theme"); theme != "" {
		_ = panic2(client.SavePreferences(ctx, protocol.PreferencesToStruct(prefs.Preferences{Theme: theme})))
	}
	p := panic2(protocol.PreferencesFromStruct(panic2(client.LoadPreferences(ctx, &emptypb.Empty{}))))
	fmt.Printf("theme: %s\n", p.Theme)
}

func doRecovery(ctx context.Context, arguments docopt.Opts, client protocol.WorkerHostClient) {
	switch {
	case arguments["save"].(bool):
		var data []byte
		if f := str(arguments, "<file>"); f != "" {
			data = panic2(os.ReadFile(f))
		} else {
			data = panic2(io.ReadAll(os.Stdin))
		}
		req := panic2(protocol.RecoveryRequestToStruct(protocol.RecoveryRequest{
			Filename: str(arguments, "<filename>"), Data: data,
		}))
		_ = panic2(client.SaveRecovery(ctx, req))
	case arguments["load"].(bool):
		v := panic2(client.LoadRecovery(ctx, wrapperspb.String(str(arguments, "<filename>"))))
		fmt.Println(string(panic2(v.MarshalJSON())))
	case arguments["cleanup"].(bool):
		n := panic2(client.CleanupRecovery(ctx, &emptypb.Empty{}))
		fmt.Printf("removed %d recovery files\n", n.GetValue())
	}
}

func main() {
	arguments, _ := docopt.ParseArgs(docs, nil, "MCP Host Client 1.0")
	conn := panic2(grpc.NewClient(address(arguments), grpc.WithTransportCredentials(insecure.NewCredentials())))
	defer conn.Close()
	client := protocol.NewWorkerHostClient(conn)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := 0
	switch {
	case arguments["watch"].(bool):
		code = doWatch(ctx, arguments, client)
	case arguments["write"].(bool):
		doWrite(ctx, arguments, client)
	default:
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()
		switch {
		case arguments["spawn"].(bool):
			doSpawn(callCtx, arguments, client)
		case arguments["kill"].(bool):
			_ = panic2(client.Kill(callCtx, wrapperspb.String(str(arguments, "<server>"))))
		case arguments["status"].(bool):
			code = doStatus(callCtx, arguments, client)
		case arguments["list"].(bool):
			doList(callCtx, client)
		case arguments["prefs"].(bool):
			doPrefs(callCtx, arguments, client)
		case arguments["recovery"].(bool):
			doRecovery(callCtx, arguments, client)
		}
	}
	if code != 0 {
		stop()
		conn.Close()
		os.Exit(code)
	}
}
