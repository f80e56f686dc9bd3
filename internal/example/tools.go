package example

import (
	"context"
	"fmt"
	"time"

	"github.com/voiceagent/example-agent/internal/swaig"
)

// Tool names as the AI calls them.
const (
	ToolGreetUser        = "greet_user"
	ToolEchoMessage      = "echo_message"
	ToolIncrementCounter = "increment_counter"
)

// counterKey is the state bag entry increment_counter maintains.
const counterKey = "counter"

// Tools implements the example agent's SWAIG functions. They hold no
// state of their own; the counter lives in the caller's state bag.
type Tools struct {
	now func() time.Time
}

// NewTools returns the tool set; now stamps UI events and defaults to
// time.Now.
func NewTools(now func() time.Time) *Tools {
	if now == nil {
		now = time.Now
	}
	return &Tools{now: now}
}

// Register adds all three tools to reg.
func (t *Tools) Register(reg *swaig.Registry) error {
	tools := []swaig.Tool{
		{
			Name:        ToolGreetUser,
			Description: "Greet a user by their name. Use this when someone introduces themselves or you want to welcome them.",
			Parameters: swaig.Object(map[string]swaig.Property{
				"name": swaig.String("The name of the person to greet"),
			}, "name"),
			Handler: t.GreetUser,
		},
		{
			Name:        ToolEchoMessage,
			Description: "Echo back a message. Use this when the user wants you to repeat something they said.",
			Parameters: swaig.Object(map[string]swaig.Property{
				"message": swaig.String("The message to echo back"),
			}, "message"),
			Handler: t.EchoMessage,
		},
		{
			Name:        ToolIncrementCounter,
			Description: "Increment a counter. Use this when the user wants to count something or track a number.",
			Parameters: swaig.Object(map[string]swaig.Property{
				"amount": swaig.Integer("Amount to increment by (default: 1)", 1, 100),
			}),
			Handler: t.IncrementCounter,
		},
	}
	for _, tool := range tools {
		if err := reg.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tools) timestamp() string {
	return t.now().Format("15:04:05")
}

// GreetUser greets the caller by name.
func (t *Tools) GreetUser(_ context.Context, args swaig.Args, _ *swaig.Request) (*swaig.Result, error) {
	name := args.String("name", "friend")

	return swaig.NewResult(fmt.Sprintf("Hello %s! Welcome to the SignalWire example agent!", name)).
		AddUserEvent(map[string]any{
			"type":      "greeting",
			"name":      name,
			"timestamp": t.timestamp(),
		}), nil
}

// EchoMessage repeats the message back and mirrors it to the client.
func (t *Tools) EchoMessage(_ context.Context, args swaig.Args, _ *swaig.Request) (*swaig.Result, error) {
	message := args.String("message", "")

	return swaig.NewResult("You said: " + message).
		AddUserEvent(map[string]any{
			"type":      "echo",
			"message":   message,
			"timestamp": t.timestamp(),
		}), nil
}

// IncrementCounter adds amount to the counter in the state bag and
// returns the updated bag. The 1..100 bound is enforced by the schema.
func (t *Tools) IncrementCounter(_ context.Context, args swaig.Args, req *swaig.Request) (*swaig.Result, error) {
	state := req.State()
	current := swaig.IntValue(state, counterKey, 0)
	amount := args.Int("amount", 1)
	count := current + amount
	state[counterKey] = count

	var text string
	if amount == 1 {
		text = fmt.Sprintf("Counter incremented! The count is now %d.", count)
	} else {
		text = fmt.Sprintf("Counter increased by %d! The count is now %d.", amount, count)
	}

	return swaig.NewResult(text).
		UpdateGlobalData(state).
		AddUserEvent(map[string]any{
			"type":      "counter_updated",
			"count":     count,
			"increment": amount,
			"timestamp": t.timestamp(),
		}), nil
}
