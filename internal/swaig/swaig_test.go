package swaig_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voiceagent/example-agent/internal/swaig"
)

func echoTool(name string) swaig.Tool {
	return swaig.Tool{
		Name:        name,
		Description: "test tool " + name,
		Parameters:  swaig.Object(map[string]swaig.Property{"text": swaig.String("text")}, "text"),
		Handler: func(ctx context.Context, args swaig.Args, req *swaig.Request) (*swaig.Result, error) {
			return swaig.NewResult(name + ":" + args.String("text", "")), nil
		},
	}
}

func TestRegistry_RegisterKeepsOrder(t *testing.T) {
	r := swaig.NewRegistry()
	r.MustRegister(echoTool("b"), echoTool("a"), echoTool("c"))

	var names []string
	for _, tool := range r.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"b", "a", "c"}, names)
}

func TestRegistry_RejectsDuplicatesAndInvalid(t *testing.T) {
	r := swaig.NewRegistry()
	require.NoError(t, r.Register(echoTool("a")))
	assert.Error(t, r.Register(echoTool("a")))
	assert.Error(t, r.Register(swaig.Tool{Name: "", Handler: echoTool("x").Handler}))
	assert.Error(t, r.Register(swaig.Tool{Name: "nohandler"}))
}

func TestRegistry_Functions(t *testing.T) {
	r := swaig.NewRegistry()
	r.MustRegister(echoTool("a"))

	fns := r.Functions("https://u:p@host/example/swaig")
	require.Len(t, fns, 1)
	assert.Equal(t, "a", fns[0].Function)
	assert.Equal(t, "https://u:p@host/example/swaig", fns[0].WebHookURL)

	raw, err := json.Marshal(fns[0].Parameters)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{"text":{"type":"string","description":"text"}},"required":["text"]}`, string(raw))
}

func TestRegistry_Dispatch(t *testing.T) {
	r := swaig.NewRegistry()
	r.MustRegister(echoTool("a"))

	res, err := r.Dispatch(context.Background(), &swaig.Request{
		Function: "a",
		Argument: swaig.Argument{Parsed: []map[string]any{{"text": "hi"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "a:hi", res.Response)
}

func TestRegistry_DispatchUnknown(t *testing.T) {
	r := swaig.NewRegistry()

	_, err := r.Dispatch(context.Background(), &swaig.Request{Function: "missing"})
	assert.True(t, errors.Is(err, swaig.ErrUnknownFunction))
}

func TestDecodeRequest(t *testing.T) {
	body := []byte(`{
		"function": "increment_counter",
		"argument": {"parsed": [{"amount": 3}], "raw": "{\"amount\":3}"},
		"global_data": {"counter": 5},
		"call_id": "call-1",
		"meta_data_token": "xyz"
	}`)

	req, err := swaig.DecodeRequest(body)
	require.NoError(t, err)
	assert.Equal(t, "increment_counter", req.Function)
	assert.Equal(t, "call-1", req.CallID)
	assert.Equal(t, 3, req.Args().Int("amount", 1))
	assert.Equal(t, 5, swaig.IntValue(req.GlobalData, "counter", 0))
	assert.Equal(t, "xyz", req.Raw["meta_data_token"])
}

func TestDecodeRequest_Invalid(t *testing.T) {
	_, err := swaig.DecodeRequest([]byte(`not json`))
	assert.Error(t, err)

	_, err = swaig.DecodeRequest([]byte(`{"argument": {}}`))
	assert.Error(t, err)
}

func TestRequestArgs_RawFallback(t *testing.T) {
	req := &swaig.Request{Argument: swaig.Argument{Raw: `{"name":"Ada"}`}}
	assert.Equal(t, "Ada", req.Args().String("name", "friend"))

	empty := &swaig.Request{}
	assert.Equal(t, "friend", empty.Args().String("name", "friend"))
	assert.Equal(t, 1, empty.Args().Int("amount", 1))
}

func TestRequestState_IsACopy(t *testing.T) {
	req := &swaig.Request{GlobalData: map[string]any{"counter": 1}}
	st := req.State()
	st["counter"] = 2
	assert.Equal(t, 1, req.GlobalData["counter"])
	assert.NotNil(t, (&swaig.Request{}).State())
}

func TestResult_MarshalJSON(t *testing.T) {
	res := swaig.NewResult("Counter incremented!").
		AddUserEvent(map[string]any{"type": "counter_updated", "count": 8}).
		UpdateGlobalData(map[string]any{"counter": 8})

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"response": "Counter incremented!",
		"action": [
			{"SWML": {"version": "1.0.0", "sections": {"main": [{"user_event": {"event": {"type": "counter_updated", "count": 8}}}]}}},
			{"set_global_data": {"counter": 8}}
		]
	}`, string(raw))
}

func TestResult_MarshalJSON_NoActions(t *testing.T) {
	raw, err := json.Marshal(swaig.NewResult("ok"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":"ok"}`, string(raw))
}
