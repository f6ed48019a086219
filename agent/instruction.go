package agent

import "strings"

// Params carries the per-dispatch values instruction templates may embed.
// Instructions are rendered on every dispatch because they reference the
// current date and the originating channel.
type Params struct {
	Today     string
	ChannelID string
	Requester string
}

// Provider supplies dynamic instruction text at runtime.
type Provider interface {
	Instruction(p Params) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(p Params) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(p Params) (string, error) { return f(p) }

// Instruction represents either a static instruction string or a dynamic
// provider. This mirrors a union of string | provider in a Go-idiomatic way.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromTemplate creates an Instruction whose {today}, {channel_id}
// and {requester} placeholders are substituted at render time.
func NewInstructionFromTemplate(text string) Instruction {
	return Instruction{provider: Func(func(p Params) (string, error) {
		return renderPlaceholders(text, p), nil
	})}
}

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider if needed.
func (i Instruction) Resolve(p Params) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(p)
	}
	return i.text, nil
}

func renderPlaceholders(text string, p Params) string {
	r := strings.NewReplacer(
		"{today}", p.Today,
		"{channel_id}", p.ChannelID,
		"{requester}", p.Requester,
	)
	return r.Replace(text)
}
