package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"emperror.dev/emperror"
	"emperror.dev/errors"
	"github.com/docopt/docopt-go"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/reyoung/mcphost/config"
	"github.com/reyoung/mcphost/events"
	"github.com/reyoung/mcphost/process"
	"github.com/reyoung/mcphost/server"
	"github.com/reyoung/mcphost/store/prefs"
	"github.com/reyoung/mcphost/store/recovery"
)

const docs = `MCP Host Server

Usage:
    mcphost_server [--config=<c>] [--address=<a>] [--log-level=<l>]
    mcphost_server -h | --help
    mcphost_server --version

Options:
    -h --help                 Show this screen.
    --version                 Show version.
    --config=<c>              Config file, defaults to $XDG_CONFIG_HOME/mcphost/config.yaml.
    --address=<a>             grpc address, overrides the config file.
    --log-level=<l>           Log level, overrides the config file.
`

const shutdownTimeout = 5 * time.Second

func loadConfig(arguments docopt.Opts) *config.Config {
	path := config.DefaultPath()
	if v, ok := arguments["--config"].(string); ok && v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	emperror.Panic(err)
	if v, ok := arguments["--address"].(string); ok && v != "" {
		cfg.Listen = v
	}
	if v, ok := arguments["--log-level"].(string); ok && v != "" {
		cfg.LogLevel = v
		emperror.Panic(cfg.Validate())
	}
	return cfg
}

func main() {
	arguments, _ := docopt.ParseArgs(docs, nil, "MCP Host Server 1.0")
	cfg := loadConfig(arguments)

	logger := cfg.Logger()
	log := logrus.NewEntry(logger)
	handler := emperror.ErrorHandlerFunc(func(err error) {
		log.WithError(err).Error("Unhandled error")
	})
	defer emperror.HandleRecover(handler)

	prefStore := prefs.NewStore(cfg.DataDir)
	recoveryStore, err := recovery.NewStore(filepath.Join(cfg.DataDir, "recovery"),
		recovery.WithRetention(cfg.RecoveryRetention),
		recovery.WithLogger(log.WithField("component", "recovery")))
	if err != nil {
		log.WithError(err).Fatal("failed to open recovery store")
	}
	if _, err := recoveryStore.Cleanup(time.Now()); err != nil {
		log.WithError(err).Warn("failed to clean up recovery files")
	}

	bc := events.NewBroadcaster(cfg.WatchBuffer)
	supervisor := process.NewSupervisor(bc,
		process.WithShell(cfg.Shell),
		process.WithReplaceOnSpawn(cfg.ReplaceOnSpawn),
		process.WithLogger(log.WithField("component", "supervisor")))

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		log.WithError(err).Fatal("failed to listen")
	}

	svr := grpc.NewServer()
	server.New(supervisor, bc, prefStore, recoveryStore,
		server.WithWriteTimeout(cfg.WriteTimeout),
		server.WithLogger(log.WithField("component", "server"))).Register(svr)

	for _, s := range cfg.Servers {
		if _, err := supervisor.Spawn(context.Background(), s); err != nil {
			handler.Handle(errors.WrapIfWithDetails(err, "failed to autostart server", "server", s.ID))
		}
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		log.Infof("received %s, shutting down", sig)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := supervisor.Shutdown(ctx); err != nil {
			handler.Handle(err)
		}
		bc.Close()
		svr.GracefulStop()
	}()

	log.Infof("server listening at %v", lis.Addr())
	if err := svr.Serve(lis); err != nil {
		log.WithError(err).Fatal("failed to serve")
	}
}
