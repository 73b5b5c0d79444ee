package server

import (
	"context"
	"fmt"
	"time"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/reyoung/mcphost/events"
	"github.com/reyoung/mcphost/process"
	"github.com/reyoung/mcphost/protocol"
	"github.com/reyoung/mcphost/store/prefs"
	"github.com/reyoung/mcphost/store/recovery"
)

// WatchingHeader is sent by Watch once the watcher is registered. Events
// emitted after the client has received the header are delivered.
const WatchingHeader = "mcphost-watching"

type Server struct {
	protocol.UnimplementedWorkerHostServer

	supervisor   *process.Supervisor
	events       *events.Broadcaster
	prefs        *prefs.Store
	recovery     *recovery.Store
	writeTimeout time.Duration
	log          *logrus.Entry
}

type Option func(s *Server)

// WithWriteTimeout bounds writes whose request carries no timeout. Zero
// leaves them unbounded.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.writeTimeout = d
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

func New(supervisor *process.Supervisor, bc *events.Broadcaster, prefStore *prefs.Store, recoveryStore *recovery.Store, opts ...Option) *Server {
	s := &Server{
		supervisor: supervisor,
		events:     bc,
		prefs:      prefStore,
		recovery:   recoveryStore,
		log:        logrus.WithField("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Register(r grpc.ServiceRegistrar) {
	protocol.RegisterWorkerHostServer(r, s)
}

func (s *Server) Spawn(ctx context.Context, req *structpb.Struct) (*wrapperspb.Int64Value, error) {
	cfg, err := protocol.ServerConfigFromStruct(req)
	if err != nil {
		return nil, s.toStatus(err)
	}
	pid, err := s.supervisor.Spawn(ctx, cfg)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return wrapperspb.Int64(int64(pid)), nil
}

func (s *Server) Write(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	w, err := protocol.WriteRequestFromStruct(req)
	if err != nil {
		return nil, s.toStatus(err)
	}
	timeout := w.Timeout
	if timeout == 0 {
		timeout = s.writeTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := s.supervisor.Write(ctx, w.ID, w.Data); err != nil {
		return nil, s.toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) Kill(_ context.Context, id *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.supervisor.Kill(id.GetValue()); err != nil {
		return nil, s.toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) IsRunning(_ context.Context, id *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(s.supervisor.IsRunning(id.GetValue())), nil
}

func (s *Server) List(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return protocol.StatusListToStruct(s.supervisor.List()), nil
}

func (s *Server) Watch(req *structpb.Struct, svr protocol.WorkerHost_WatchServer) error {
	ids, err := watchIDs(req)
	if err != nil {
		return s.toStatus(err)
	}
	w := s.events.Watch(ids...)
	defer w.Close()

	if err := svr.SendHeader(metadata.Pairs(WatchingHeader, "true")); err != nil {
		return err
	}
	log := s.log.WithField("servers", ids)
	log.Debug("Watcher attached")
	defer log.Debug("Watcher detached")

	for {
		select {
		case <-svr.Context().Done():
			return nil
		case e, ok := <-w.Events():
			if !ok {
				return status.Error(codes.Unavailable, "event stream closed")
			}
			if err := svr.Send(protocol.EventToStruct(e)); err != nil {
				return err
			}
		}
	}
}

func watchIDs(req *structpb.Struct) ([]string, error) {
	v, ok := req.GetFields()["ids"]
	if !ok {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, errors.WithMessage(protocol.ErrMalformed, "ids must be a list")
	}
	ids := make([]string, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		ids = append(ids, item.GetStringValue())
	}
	return ids, nil
}

func (s *Server) LoadPreferences(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	p, err := s.prefs.Load()
	if err != nil {
		return nil, s.toStatus(err)
	}
	return protocol.PreferencesToStruct(p), nil
}

func (s *Server) SavePreferences(_ context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	p, err := protocol.PreferencesFromStruct(req)
	if err != nil {
		return nil, s.toStatus(err)
	}
	if err := s.prefs.Save(p); err != nil {
		return nil, s.toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) SaveRecovery(_ context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	r, err := protocol.RecoveryRequestFromStruct(req)
	if err != nil {
		return nil, s.toStatus(err)
	}
	if err := s.recovery.Save(r.Filename, r.Data); err != nil {
		return nil, s.toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) LoadRecovery(_ context.Context, name *wrapperspb.StringValue) (*structpb.Value, error) {
	raw, err := s.recovery.Load(name.GetValue())
	if err != nil {
		return nil, s.toStatus(err)
	}
	v, err := protocol.JSONToValue(raw)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return v, nil
}

func (s *Server) CleanupRecovery(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	n, err := s.recovery.Cleanup(time.Now())
	if err != nil {
		return nil, s.toStatus(err)
	}
	return wrapperspb.Int64(int64(n)), nil
}

func code(err error) codes.Code {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, process.ErrNotFound), errors.Is(err, recovery.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, process.ErrAlreadyRunning):
		return codes.AlreadyExists
	case errors.Is(err, process.ErrInvalidConfig),
		errors.Is(err, protocol.ErrMalformed),
		errors.Is(err, recovery.ErrInvalidFilename),
		errors.Is(err, recovery.ErrTooLarge),
		errors.Is(err, prefs.ErrInvalidTheme):
		return codes.InvalidArgument
	case errors.Is(err, process.ErrClosed):
		return codes.Unavailable
	}
	return codes.Internal
}

func (s *Server) toStatus(err error) error {
	c := code(err)
	if c == codes.Internal {
		fields := logrus.Fields{}
		details := errors.GetDetails(err)
		for i := 0; i+1 < len(details); i += 2 {
			fields[fmt.Sprint(details[i])] = details[i+1]
		}
		s.log.WithFields(fields).WithError(err).Error("Request failed")
	}
	return status.Error(c, err.Error())
}
