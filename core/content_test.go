package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContent_Text(t *testing.T) {
	c := Content{
		Role: "assistant",
		Parts: []Part{
			TextPart{Text: "hello "},
			FunctionCallPart{FunctionCall: FunctionCall{Name: "lookup"}},
			TextPart{Text: "world"},
		},
	}

	assert.Equal(t, "hello world", c.Text())
}

func TestContent_FunctionCalls(t *testing.T) {
	c := Content{
		Role: "assistant",
		Parts: []Part{
			TextPart{Text: "thinking"},
			FunctionCallPart{FunctionCall: FunctionCall{ID: "1", Name: "a"}},
			FunctionCallPart{FunctionCall: FunctionCall{ID: "2", Name: "b"}},
		},
	}

	calls := c.FunctionCalls()
	assert.Len(t, calls, 2)
	assert.Equal(t, "a", calls[0].Name)
	assert.Equal(t, "b", calls[1].Name)

	assert.Empty(t, NewUserText("plain").FunctionCalls())
}

func TestContent_Constructors(t *testing.T) {
	user := NewUserText("hi")
	assert.Equal(t, "user", user.Role)
	assert.Equal(t, "hi", user.Text())

	assistant := NewAssistantText("hello")
	assert.Equal(t, "assistant", assistant.Role)
	assert.Equal(t, "hello", assistant.Text())
}
