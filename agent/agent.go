// Package agent implements capability-scoped agent descriptors and the
// iterative reasoning loop that drives them. An Agent bundles instructions
// with a closed tool set; the model can only invoke tools the descriptor was
// handed, which is the least-privilege boundary between sibling agents.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hupe1980/deskmesh/core"
	"github.com/hupe1980/deskmesh/logging"
	"github.com/hupe1980/deskmesh/model"
	"github.com/hupe1980/deskmesh/tool"
)

// DefaultMaxModelCalls bounds the reasoning loop so a confused model cannot
// ping-pong tool calls forever.
const DefaultMaxModelCalls = 10

// Options configures an Agent instance.
type Options struct {
	Description   string
	Instruction   Instruction
	Tools         []tool.Tool
	MaxModelCalls int
	Logger        logging.Logger
}

// Agent is a named, capability-scoped descriptor plus the loop that runs it.
type Agent struct {
	name  string
	llm   model.Model
	tools map[string]tool.Tool
	order []string
	opts  Options
}

// New constructs an Agent bound to a model with optional overrides.
func New(name string, llm model.Model, optFns ...func(o *Options)) *Agent {
	opts := Options{
		MaxModelCalls: DefaultMaxModelCalls,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	tools := make(map[string]tool.Tool, len(opts.Tools))
	order := make([]string, 0, len(opts.Tools))
	for _, t := range opts.Tools {
		if _, exists := tools[t.Name()]; exists {
			continue
		}
		tools[t.Name()] = t
		order = append(order, t.Name())
	}

	return &Agent{name: name, llm: llm, tools: tools, order: order, opts: opts}
}

// Name returns the agent name.
func (a *Agent) Name() string { return a.name }

// Description returns the short capability summary used by handoff tools.
func (a *Agent) Description() string { return a.opts.Description }

// Tools returns the agent's tool set in registration order.
func (a *Agent) Tools() []tool.Tool {
	out := make([]tool.Tool, 0, len(a.order))
	for _, name := range a.order {
		out = append(out, a.tools[name])
	}
	return out
}

// RunInput is the per-dispatch input to the reasoning loop.
type RunInput struct {
	Text    string
	History []core.Content
	Params  Params
}

// ToolCallRecord captures one executed tool call for the dispatch trace.
type ToolCallRecord struct {
	Tool   string
	Input  map[string]any
	Output any
	Err    string
}

// Result is the terminal outcome of one agent run.
type Result struct {
	FinalText string
	ToolCalls []ToolCallRecord
}

// Run executes the reasoning loop: invoke the model, execute any requested
// tool calls strictly sequentially, feed each observation back, and repeat
// until the model emits terminal text. Tool failures never abort the loop;
// they surface as null observations the model must explain to the user.
func (a *Agent) Run(ctx context.Context, in RunInput) (*Result, error) {
	instructions, err := a.opts.Instruction.Resolve(in.Params)
	if err != nil {
		return nil, fmt.Errorf("resolve instructions: %w", err)
	}

	contents := make([]core.Content, 0, len(in.History)+1)
	contents = append(contents, in.History...)
	contents = append(contents, core.NewUserText(in.Text))

	defs := a.toolDefinitions()
	limiter := core.NewCallLimiter(a.opts.MaxModelCalls)
	result := &Result{}

	for {
		if err := limiter.Increment(); err != nil {
			return nil, fmt.Errorf("agent %s: %w", a.name, err)
		}

		resp, err := a.llm.Generate(ctx, model.Request{
			Instructions: instructions,
			Contents:     contents,
			Tools:        defs,
		})
		if err != nil {
			return nil, fmt.Errorf("agent %s: model call failed: %w", a.name, err)
		}

		content := ensureCallIDs(resp.Content)
		calls := content.FunctionCalls()
		if len(calls) == 0 {
			result.FinalText = content.Text()
			return result, nil
		}

		contents = append(contents, content)
		contents = append(contents, a.executeCalls(ctx, calls, result))
	}
}

// executeCalls runs requested tool calls one after another (each call blocks
// on the previous observation) and returns the tool content to feed back.
func (a *Agent) executeCalls(ctx context.Context, calls []core.FunctionCall, result *Result) core.Content {
	observation := core.Content{Role: "tool"}

	for _, call := range calls {
		output, callErr := a.executeCall(ctx, call)

		record := ToolCallRecord{Tool: call.Name, Output: output}
		if len(call.Arguments) > 0 {
			_ = json.Unmarshal([]byte(call.Arguments), &record.Input)
		}

		fr := core.FunctionResponse{ID: call.ID, Name: call.Name, Response: output}
		if callErr != nil {
			a.opts.Logger.Warn("agent.tool.failed", "agent", a.name, "tool", call.Name, "error", callErr.Error())
			fr.Response = nil
			fr.Error = callErr.Error()
			record.Output = nil
			record.Err = callErr.Error()
		} else {
			a.opts.Logger.Info("agent.tool.ok", "agent", a.name, "tool", call.Name)
		}

		result.ToolCalls = append(result.ToolCalls, record)
		observation.Parts = append(observation.Parts, core.FunctionResponsePart{FunctionResponse: fr})
	}

	return observation
}

func (a *Agent) executeCall(ctx context.Context, call core.FunctionCall) (any, error) {
	t, ok := a.tools[call.Name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", call.Name)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return nil, fmt.Errorf("malformed arguments for %q: %w", call.Name, err)
		}
	}

	return t.Call(ctx, args)
}

// ensureCallIDs assigns generated IDs to function calls the provider left
// unidentified. The ID must land in the assistant content itself, not just
// the observation, because the adapters pair observations to calls by ID.
func ensureCallIDs(c core.Content) core.Content {
	for i, p := range c.Parts {
		fc, ok := p.(core.FunctionCallPart)
		if !ok || fc.FunctionCall.ID != "" {
			continue
		}
		fc.FunctionCall.ID = uuid.NewString()
		c.Parts[i] = fc
	}
	return c
}

func (a *Agent) toolDefinitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(a.order))
	for _, name := range a.order {
		t := a.tools[name]
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}
