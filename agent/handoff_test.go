package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/deskmesh/model"
	"github.com/hupe1980/deskmesh/tool"
)

func TestHandoffTool_DelegatesAndRelays(t *testing.T) {
	subLLM := model.NewMockModel("sub")
	subLLM.EnqueueText("task TK-7 created")

	sub := New("tasks", subLLM, func(o *Options) {
		o.Description = "Manages the task database."
		o.Instruction = NewInstructionFromTemplate("Today is {today}.")
	})

	handoff := NewHandoffTool(sub, Params{Today: "2026-08-31", ChannelID: "C1"})

	assert.Equal(t, "delegate_to_tasks", handoff.Name())
	assert.Contains(t, handoff.Description(), "Manages the task database.")

	out, err := handoff.Call(context.Background(), map[string]any{"request": "create a task"})
	require.NoError(t, err)
	assert.Equal(t, "task TK-7 created", out)

	// The sub-agent sees only the forwarded request, with params applied.
	reqs := subLLM.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Today is 2026-08-31.", reqs[0].Instructions)
	require.Len(t, reqs[0].Contents, 1)
	assert.Equal(t, "create a task", reqs[0].Contents[0].Text())
}

func TestHandoffTool_RejectsBadRequest(t *testing.T) {
	sub := New("tasks", model.NewMockModel("sub"))
	handoff := NewHandoffTool(sub, Params{})

	_, err := handoff.Call(context.Background(), map[string]any{})
	assert.Error(t, err)

	_, err = handoff.Call(context.Background(), map[string]any{"request": ""})
	assert.Error(t, err)

	_, err = handoff.Call(context.Background(), map[string]any{"request": 7})
	assert.Error(t, err)
}

func TestHandoffTool_SubAgentFailurePropagates(t *testing.T) {
	// Empty script: the sub-agent's model call fails immediately.
	sub := New("tasks", model.NewMockModel("sub"))
	handoff := NewHandoffTool(sub, Params{})

	_, err := handoff.Call(context.Background(), map[string]any{"request": "do it"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sub-agent tasks failed")
}

func TestHandoffTool_SideEffectIsStrongestOfSubTools(t *testing.T) {
	readTool := tool.NewFunctionTool("r", "", map[string]any{"type": "object"}, tool.SideEffectRead, nil)
	writeTool := tool.NewFunctionTool("w", "", map[string]any{"type": "object"}, tool.SideEffectWrite, nil)
	sendTool := tool.NewFunctionTool("s", "", map[string]any{"type": "object"}, tool.SideEffectExternalSend, nil)

	tests := []struct {
		name  string
		tools []tool.Tool
		want  tool.SideEffect
	}{
		{name: "no tools", tools: nil, want: tool.SideEffectRead},
		{name: "read only", tools: []tool.Tool{readTool}, want: tool.SideEffectRead},
		{name: "read and write", tools: []tool.Tool{readTool, writeTool}, want: tool.SideEffectWrite},
		{name: "send dominates", tools: []tool.Tool{writeTool, sendTool}, want: tool.SideEffectExternalSend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := New("sub", model.NewMockModel("sub"), func(o *Options) {
				o.Tools = tt.tools
			})
			handoff := NewHandoffTool(sub, Params{})
			assert.Equal(t, tt.want, handoff.SideEffect())
		})
	}
}
