package protocol

import (
	"encoding/base64"
	"encoding/json"
	"time"
	"unicode/utf8"

	"emperror.dev/errors"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/reyoung/mcphost/process"
	"github.com/reyoung/mcphost/store/prefs"
)

const ErrMalformed = errors.Sentinel("malformed message")

func malformed(field, reason string) error {
	return errors.WithDetails(errors.WithMessage(ErrMalformed, reason), "field", field)
}

// WriteRequest is the payload of WorkerHost.Write.
type WriteRequest struct {
	ID   string
	Data []byte
	// Timeout bounds the write on the host side, zero means the host default.
	Timeout time.Duration
}

// RecoveryRequest is the payload of WorkerHost.SaveRecovery.
type RecoveryRequest struct {
	Filename string
	Data     json.RawMessage
}

func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", nil
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", malformed(name, "expected a string")
	}
	return sv.StringValue, nil
}

func numberField(s *structpb.Struct, name string) (float64, bool, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, false, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return k.NumberValue, true, nil
	case *structpb.Value_NullValue:
		return 0, false, nil
	}
	return 0, false, malformed(name, "expected a number")
}

func stringListField(s *structpb.Struct, name string) ([]string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return nil, nil
	}
	lv, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, malformed(name, "expected a list")
	}
	out := make([]string, 0, len(lv.ListValue.GetValues()))
	for _, item := range lv.ListValue.GetValues() {
		sv, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, malformed(name, "expected a list of strings")
		}
		out = append(out, sv.StringValue)
	}
	return out, nil
}

// Protobuf strings must be valid UTF-8, while process output and stdin are
// arbitrary bytes. Such payloads travel base64 encoded, flagged by
// "encoding".
const (
	encodingField  = "encoding"
	encodingBase64 = "base64"
)

func putData(fields map[string]*structpb.Value, data string) {
	if utf8.ValidString(data) {
		fields["data"] = structpb.NewStringValue(data)
		return
	}
	fields["data"] = structpb.NewStringValue(base64.StdEncoding.EncodeToString([]byte(data)))
	fields[encodingField] = structpb.NewStringValue(encodingBase64)
}

func dataField(s *structpb.Struct) (string, error) {
	data, err := stringField(s, "data")
	if err != nil {
		return "", err
	}
	enc, err := stringField(s, encodingField)
	if err != nil {
		return "", err
	}
	switch enc {
	case "":
		return data, nil
	case encodingBase64:
		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", malformed("data", err.Error())
		}
		return string(raw), nil
	}
	return "", malformed(encodingField, "unknown encoding "+enc)
}

func stringList(items []string) *structpb.Value {
	values := make([]*structpb.Value, 0, len(items))
	for _, item := range items {
		values = append(values, structpb.NewStringValue(item))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func ServerConfigToStruct(cfg process.ServerConfig) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"id":      structpb.NewStringValue(cfg.ID),
		"command": structpb.NewStringValue(cfg.Command),
		"args":    stringList(cfg.Args),
	}
	if len(cfg.Env) > 0 {
		env := make(map[string]*structpb.Value, len(cfg.Env))
		for k, v := range cfg.Env {
			env[k] = structpb.NewStringValue(v)
		}
		fields["env"] = structpb.NewStructValue(&structpb.Struct{Fields: env})
	}
	if cfg.Dir != "" {
		fields["dir"] = structpb.NewStringValue(cfg.Dir)
	}
	return &structpb.Struct{Fields: fields}
}

func ServerConfigFromStruct(s *structpb.Struct) (process.ServerConfig, error) {
	var (
		cfg  process.ServerConfig
		errs error
		err  error
	)
	cfg.ID, err = stringField(s, "id")
	errs = errors.Append(errs, err)
	cfg.Command, err = stringField(s, "command")
	errs = errors.Append(errs, err)
	cfg.Args, err = stringListField(s, "args")
	errs = errors.Append(errs, err)
	cfg.Dir, err = stringField(s, "dir")
	errs = errors.Append(errs, err)

	if v, ok := s.GetFields()["env"]; ok {
		env, ok := v.GetKind().(*structpb.Value_StructValue)
		if !ok {
			errs = errors.Append(errs, malformed("env", "expected an object"))
		} else {
			cfg.Env = make(map[string]string, len(env.StructValue.GetFields()))
			for k, ev := range env.StructValue.GetFields() {
				sv, ok := ev.GetKind().(*structpb.Value_StringValue)
				if !ok {
					errs = errors.Append(errs, malformed("env."+k, "expected a string"))
					continue
				}
				cfg.Env[k] = sv.StringValue
			}
		}
	}
	return cfg, errs
}

func WriteRequestToStruct(req WriteRequest) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"id": structpb.NewStringValue(req.ID),
	}
	putData(fields, string(req.Data))
	if req.Timeout > 0 {
		fields["timeout_ms"] = structpb.NewNumberValue(float64(req.Timeout.Milliseconds()))
	}
	return &structpb.Struct{Fields: fields}
}

func WriteRequestFromStruct(s *structpb.Struct) (WriteRequest, error) {
	var req WriteRequest
	id, err := stringField(s, "id")
	if err != nil {
		return req, err
	}
	data, err := dataField(s)
	if err != nil {
		return req, err
	}
	ms, _, err := numberField(s, "timeout_ms")
	if err != nil {
		return req, err
	}
	if ms < 0 {
		return req, malformed("timeout_ms", "must not be negative")
	}
	req.ID = id
	req.Data = []byte(data)
	req.Timeout = time.Duration(ms) * time.Millisecond
	return req, nil
}

func EventToStruct(e process.Event) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"type":      structpb.NewStringValue(string(e.Kind)),
		"server_id": structpb.NewStringValue(e.ServerID),
		"instance":  structpb.NewStringValue(e.Instance),
		"time":      structpb.NewStringValue(e.Time.UTC().Format(time.RFC3339Nano)),
	}
	switch e.Kind {
	case process.EventExit:
		if e.Code != nil {
			fields["code"] = structpb.NewNumberValue(float64(*e.Code))
		} else {
			fields["code"] = structpb.NewNullValue()
		}
	default:
		putData(fields, e.Data)
	}
	return &structpb.Struct{Fields: fields}
}

func EventFromStruct(s *structpb.Struct) (process.Event, error) {
	var e process.Event
	kind, err := stringField(s, "type")
	if err != nil {
		return e, err
	}
	switch k := process.EventKind(kind); k {
	case process.EventStdout, process.EventStderr, process.EventExit:
		e.Kind = k
	default:
		return e, malformed("type", "unknown event type "+kind)
	}
	if e.ServerID, err = stringField(s, "server_id"); err != nil {
		return e, err
	}
	if e.Instance, err = stringField(s, "instance"); err != nil {
		return e, err
	}
	if e.Data, err = dataField(s); err != nil {
		return e, err
	}
	code, ok, err := numberField(s, "code")
	if err != nil {
		return e, err
	}
	if ok {
		c := int(code)
		e.Code = &c
	}
	ts, err := stringField(s, "time")
	if err != nil {
		return e, err
	}
	if ts != "" {
		if e.Time, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return e, malformed("time", err.Error())
		}
	}
	return e, nil
}

func statusToValue(st process.Status) *structpb.Value {
	fields := map[string]*structpb.Value{
		"name":     structpb.NewStringValue(st.Name),
		"instance": structpb.NewStringValue(st.Instance),
		"pid":      structpb.NewNumberValue(float64(st.PID)),
		"command":  structpb.NewStringValue(st.Command),
		"args":     stringList(st.Args),
		"started":  structpb.NewStringValue(st.Started.UTC().Format(time.RFC3339Nano)),
		"running":  structpb.NewBoolValue(st.Running),
	}
	if st.ExitCode != nil {
		fields["exit_code"] = structpb.NewNumberValue(float64(*st.ExitCode))
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}

func StatusListToStruct(list []process.Status) *structpb.Struct {
	values := make([]*structpb.Value, 0, len(list))
	for _, st := range list {
		values = append(values, statusToValue(st))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"servers": structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}
}

func StatusListFromStruct(s *structpb.Struct) ([]process.Status, error) {
	v, ok := s.GetFields()["servers"]
	if !ok {
		return nil, nil
	}
	lv, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, malformed("servers", "expected a list")
	}
	out := make([]process.Status, 0, len(lv.ListValue.GetValues()))
	for _, item := range lv.ListValue.GetValues() {
		sv, ok := item.GetKind().(*structpb.Value_StructValue)
		if !ok {
			return nil, malformed("servers", "expected a list of objects")
		}
		st, err := statusFromStruct(sv.StructValue)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func statusFromStruct(s *structpb.Struct) (process.Status, error) {
	var (
		st   process.Status
		errs error
		err  error
	)
	st.Name, err = stringField(s, "name")
	errs = errors.Append(errs, err)
	st.Instance, err = stringField(s, "instance")
	errs = errors.Append(errs, err)
	st.Command, err = stringField(s, "command")
	errs = errors.Append(errs, err)
	st.Args, err = stringListField(s, "args")
	errs = errors.Append(errs, err)
	pid, _, err := numberField(s, "pid")
	errs = errors.Append(errs, err)
	st.PID = int(pid)
	code, ok, err := numberField(s, "exit_code")
	errs = errors.Append(errs, err)
	if ok {
		c := int(code)
		st.ExitCode = &c
	}
	st.Running = s.GetFields()["running"].GetBoolValue()
	started, err := stringField(s, "started")
	errs = errors.Append(errs, err)
	if started != "" {
		st.Started, err = time.Parse(time.RFC3339Nano, started)
		errs = errors.Append(errs, err)
	}
	return st, errs
}

func PreferencesToStruct(p prefs.Preferences) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"theme": structpb.NewStringValue(p.Theme),
	}}
}

func PreferencesFromStruct(s *structpb.Struct) (prefs.Preferences, error) {
	p := prefs.Default()
	theme, err := stringField(s, "theme")
	if err != nil {
		return p, err
	}
	if theme != "" {
		p.Theme = theme
	}
	return p, nil
}

func RecoveryRequestToStruct(req RecoveryRequest) (*structpb.Struct, error) {
	data, err := JSONToValue(req.Data)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"filename": structpb.NewStringValue(req.Filename),
		"data":     data,
	}}, nil
}

func RecoveryRequestFromStruct(s *structpb.Struct) (RecoveryRequest, error) {
	var req RecoveryRequest
	name, err := stringField(s, "filename")
	if err != nil {
		return req, err
	}
	data, ok := s.GetFields()["data"]
	if !ok {
		return req, malformed("data", "missing")
	}
	raw, err := data.MarshalJSON()
	if err != nil {
		return req, errors.WrapIf(err, "failed to encode recovery data")
	}
	req.Filename = name
	req.Data = raw
	return req, nil
}

// JSONToValue converts an arbitrary JSON document to a protobuf Value.
func JSONToValue(raw json.RawMessage) (*structpb.Value, error) {
	v := &structpb.Value{}
	if err := v.UnmarshalJSON(raw); err != nil {
		return nil, errors.WithDetails(errors.WithMessage(ErrMalformed, err.Error()), "field", "data")
	}
	return v, nil
}
