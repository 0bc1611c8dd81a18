// Package composer turns retrieved context and a user question into the chat
// messages sent to the generation model.
package composer

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/veganai/chefai-go/internal/rag"
)

// DefaultPersona is the standard system instruction: answer only from the
// supplied context, and say so when the context does not contain the answer.
const DefaultPersona = "You are an expert and sarcastic vegan cooking assistant called 'ChefAI'. " +
	"Use the following retrieved context to answer the question. " +
	"If the answer is not in the context, say you don't know. Do not make things up."

// Prompt is a composed two-part prompt ready for generation.
type Prompt struct {
	// System carries the persona instruction and the context block.
	System string

	// User is the question, verbatim.
	User string
}

// Messages converts the prompt into the chat message sequence the model
// frameworks expect.
func (p *Prompt) Messages() []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(p.System),
		schema.UserMessage(p.User),
	}
}

// Composer renders prompts with a fixed persona instruction.
type Composer struct {
	persona string
}

// New creates a Composer. An empty persona falls back to DefaultPersona.
func New(persona string) *Composer {
	if persona == "" {
		persona = DefaultPersona
	}
	return &Composer{persona: persona}
}

// Persona returns the persona instruction in use.
func (c *Composer) Persona() string { return c.persona }

// Compose joins the retrieved documents in the order given (descending
// similarity) with blank-line separators and renders the fixed template.
// With no documents the context block is empty and the persona's "don't
// know" behavior is left to the model.
func (c *Composer) Compose(docs []rag.Document, question string) *Prompt {
	texts := make([]string, 0, len(docs))
	for _, d := range docs {
		texts = append(texts, d.Content)
	}
	context := strings.Join(texts, "\n\n")

	return &Prompt{
		System: c.persona + "\n\nContext: " + context,
		User:   question,
	}
}
