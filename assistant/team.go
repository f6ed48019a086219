// Package assistant assembles the agent team: five capability-scoped
// sub-agents and the supervisor that delegates to them. Each sub-agent is
// handed only the tools of its own domain, so the model can never reach a
// sibling's capabilities.
package assistant

import (
	"github.com/hupe1980/deskmesh/agent"
	"github.com/hupe1980/deskmesh/docstore"
	"github.com/hupe1980/deskmesh/knowledge"
	"github.com/hupe1980/deskmesh/logging"
	"github.com/hupe1980/deskmesh/mailer"
	"github.com/hupe1980/deskmesh/model"
	"github.com/hupe1980/deskmesh/records"
	"github.com/hupe1980/deskmesh/tool"
	"github.com/hupe1980/deskmesh/workspace"
)

// Deps are the external collaborators the agent team works against.
type Deps struct {
	Model     model.Model
	Messenger workspace.Messenger
	Docs      docstore.Store
	Records   records.Store
	Knowledge knowledge.Retriever
	Mail      mailer.Sender

	ProfileFanOut int
	Logger        logging.Logger
}

func (d Deps) withDefaults() Deps {
	if d.ProfileFanOut <= 0 {
		d.ProfileFanOut = DefaultProfileFanOut
	}
	if d.Logger == nil {
		d.Logger = logging.NoOpLogger{}
	}
	return d
}

// NewSupervisor builds the supervisor descriptor for one dispatch. Agents are
// rebuilt per dispatch because their instructions embed the current date and
// channel; construction is cheap (no I/O).
func NewSupervisor(deps Deps, params agent.Params) *agent.Agent {
	deps = deps.withDefaults()

	subAgents := []*agent.Agent{
		newTasksAgent(deps),
		newDocsAgent(deps),
		newEmailAgent(deps),
		newTranscriptsAgent(deps),
		newKnowledgeAgent(deps),
	}

	handoffs := make([]tool.Tool, 0, len(subAgents))
	for _, sub := range subAgents {
		handoffs = append(handoffs, agent.NewHandoffTool(sub, params))
	}

	return agent.New("supervisor", deps.Model, func(o *agent.Options) {
		o.Description = "Routes workspace requests to specialized agents and relays their answers."
		o.Instruction = agent.NewInstructionFromTemplate(supervisorPrompt)
		o.Tools = handoffs
		o.Logger = deps.Logger
	})
}

// NewChannelAgent builds the router-less single-agent variant: one descriptor
// holding the document, people and task tools directly. Used where the full
// delegation protocol is not needed.
func NewChannelAgent(deps Deps, params agent.Params) *agent.Agent {
	deps = deps.withDefaults()

	return agent.New("channel", deps.Model, func(o *agent.Options) {
		o.Description = "Answers workspace questions about documents, people and tasks."
		o.Instruction = agent.NewInstructionFromTemplate(channelAgentPrompt)
		o.Tools = []tool.Tool{
			newFindDocumentTool(deps.Docs),
			newChannelProfilesTool(deps.Messenger, deps.ProfileFanOut),
			newProfileTool(deps.Messenger),
			newTaskQueryTool(deps.Records),
		}
		o.Logger = deps.Logger
	})
}

func newTasksAgent(deps Deps) *agent.Agent {
	return agent.New("tasks", deps.Model, func(o *agent.Options) {
		o.Description = "Assigns, updates, deletes and lists tasks; computes task statistics."
		o.Instruction = agent.NewInstructionFromTemplate(tasksPrompt)
		o.Tools = []tool.Tool{
			newTaskQueryTool(deps.Records),
			newChannelProfilesTool(deps.Messenger, deps.ProfileFanOut),
			newProfileTool(deps.Messenger),
		}
		o.Logger = deps.Logger
	})
}

func newDocsAgent(deps Deps) *agent.Agent {
	return agent.New("docs", deps.Model, func(o *agent.Options) {
		o.Description = "Retrieves documents by title and lists available documents."
		o.Instruction = agent.NewInstructionFromText(docsPrompt)
		o.Tools = []tool.Tool{
			newFindDocumentTool(deps.Docs),
			newListDocumentNamesTool(deps.Docs),
		}
		o.Logger = deps.Logger
	})
}

func newEmailAgent(deps Deps) *agent.Agent {
	return agent.New("email", deps.Model, func(o *agent.Options) {
		o.Description = "Sends pre-composed emails to team members. Never authors task content itself."
		o.Instruction = agent.NewInstructionFromText(emailPrompt)
		o.Tools = []tool.Tool{
			newSendEmailTool(deps.Mail),
		}
		o.Logger = deps.Logger
	})
}

func newTranscriptsAgent(deps Deps) *agent.Agent {
	return agent.New("transcripts", deps.Model, func(o *agent.Options) {
		o.Description = "Lists, retrieves, summarizes and deletes meeting transcriptions."
		o.Instruction = agent.NewInstructionFromText(transcriptsPrompt)
		o.Tools = []tool.Tool{
			newTranscriptionQueryTool(deps.Records),
		}
		o.Logger = deps.Logger
	})
}

func newKnowledgeAgent(deps Deps) *agent.Agent {
	return agent.New("knowledge", deps.Model, func(o *agent.Options) {
		o.Description = "Answers business questions from the company knowledge base."
		o.Instruction = agent.NewInstructionFromText(knowledgePrompt)
		o.Tools = []tool.Tool{
			newKnowledgeTool(deps.Knowledge),
		}
		o.Logger = deps.Logger
	})
}
