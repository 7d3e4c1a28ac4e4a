// Package prompt holds the model options a user can pick and the prompt
// template each of them selects. The option never reaches the LLM call, it
// only changes the wording of the prompt.
package prompt

import (
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

const (
	MissLizzy  = "FPHam/MissLizzy_7b_HF"
	PhiBode    = "recogna-nlp/Phi-Bode"
	MetaLlama3 = "meta-llama/Meta-Llama-3-8B"

	ContextVar = "context"
	InputVar   = "input"
)

var ErrUnknownModel = errors.New("unknown model option")

type Option struct {
	Id          string `json:"id"`
	Description string `json:"description"`
	template    prompts.PromptTemplate
}

// the shared tail keeps the retrieved context between two <context> markers
const questionBlock = `
<context>
{context}
<context>

Question: {input}`

var options = []Option{
	{
		Id:          MissLizzy,
		Description: "helpful and knowledgeable assistant",
		template: newTemplate(`You are a helpful and knowledgeable assistant. Please provide a detailed and accurate response to the following question based on the given context.` +
			questionBlock + `

Answer:`),
	},
	{
		Id:          PhiBode,
		Description: "technical and analytical problem solver",
		template: newTemplate(`You are an expert in technical and analytical problem-solving. Use the context provided to answer the question precisely and comprehensively.` +
			questionBlock + `

Detailed Answer:`),
	},
	{
		Id:          MetaLlama3,
		Description: "creative and insightful assistant",
		template: newTemplate(`You are a creative and insightful assistant. Use the given context to provide an in-depth and thoughtful response to the following question.` +
			questionBlock + `

Insightful Answer:`),
	},
}

func newTemplate(tpl string) prompts.PromptTemplate {
	t := prompts.NewPromptTemplate(tpl, []string{ContextVar, InputVar})
	t.TemplateFormat = prompts.TemplateFormatFString
	return t
}

// Options lists the choices in display order, the first one is the default.
func Options() []Option {
	out := make([]Option, len(options))
	copy(out, options)
	return out
}

func Default() string {
	return options[0].Id
}

func Lookup(id string) (Option, error) {
	for _, o := range options {
		if o.Id == id {
			return o, nil
		}
	}
	return Option{}, fmt.Errorf("%w: %q", ErrUnknownModel, id)
}

// Template returns the raw template text of an option.
func (o Option) Template() string {
	return o.template.Template
}

// Fill renders the template of the given option.
func Fill(id string, context string, input string) (string, error) {
	o, err := Lookup(id)
	if err != nil {
		return "", err
	}
	return o.template.Format(map[string]any{
		ContextVar: context,
		InputVar:   input,
	})
}
