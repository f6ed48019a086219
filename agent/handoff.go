package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/deskmesh/tool"
)

// handoffTool forwards a natural-language sub-request to a wrapped sub-agent
// and returns its terminal text as the observation. The sub-agent runs with
// fresh state: it sees only the forwarded request, never the supervisor's
// conversation.
type handoffTool struct {
	sub    *Agent
	params Params
}

// NewHandoffTool constructs the delegation tool for a sub-agent. A supervisor
// whose tool set consists of handoff tools can orchestrate sub-agents without
// ever holding their capabilities itself.
func NewHandoffTool(sub *Agent, params Params) tool.Tool {
	return &handoffTool{sub: sub, params: params}
}

func (t *handoffTool) Name() string { return "delegate_to_" + t.sub.Name() }

func (t *handoffTool) Description() string {
	return fmt.Sprintf("Hand the request off to the %s agent. %s", t.sub.Name(), t.sub.Description())
}

func (t *handoffTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"request": map[string]any{
				"type":        "string",
				"description": "The sub-request to forward, phrased in natural language",
			},
		},
		"required": []string{"request"},
	}
}

// SideEffect reports the strongest side effect of the wrapped agent's tools,
// since delegating exposes everything the sub-agent can do.
func (t *handoffTool) SideEffect() tool.SideEffect {
	strongest := tool.SideEffectRead
	for _, sub := range t.sub.Tools() {
		switch sub.SideEffect() {
		case tool.SideEffectExternalSend:
			return tool.SideEffectExternalSend
		case tool.SideEffectWrite:
			strongest = tool.SideEffectWrite
		}
	}
	return strongest
}

func (t *handoffTool) Call(ctx context.Context, args map[string]any) (any, error) {
	raw, ok := args["request"]
	if !ok {
		return nil, fmt.Errorf("missing required field 'request'")
	}
	request, ok := raw.(string)
	if !ok || request == "" {
		return nil, fmt.Errorf("field 'request' must be non-empty string")
	}

	result, err := t.sub.Run(ctx, RunInput{Text: request, Params: t.params})
	if err != nil {
		return nil, fmt.Errorf("sub-agent %s failed: %w", t.sub.Name(), err)
	}

	return result.FinalText, nil
}
