// Package console runs an agent as a text conversation on a terminal, with
// the language model standing in for the voice pipeline.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"voicecoach/agent"
	"voicecoach/core"
	"voicecoach/tools"
)

// Responder produces the agent's next reply, running tools as needed.
// *llm.OpenAILLMService satisfies it.
type Responder interface {
	Respond(ctx context.Context, llmCtx *core.LLMContext, registry *tools.Registry) (string, error)
}

const quitCommand = "/quit"

type Console struct {
	agent     *agent.Agent
	responder Responder
	in        io.Reader
	out       io.Writer
	logger    *core.Logger
}

func New(a *agent.Agent, r Responder, in io.Reader, out io.Writer, logger *core.Logger) *Console {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Console{
		agent:     a,
		responder: r,
		in:        in,
		out:       out,
		logger:    logger.With(map[string]any{"component": "console"}),
	}
}

// Run greets the user, then alternates user lines and agent replies until
// /quit, EOF or ctx cancellation.
func (c *Console) Run(ctx context.Context) error {
	llmCtx := c.agent.Context()
	llmCtx.AddSystemMessage(c.agent.Greeting())
	c.reply(ctx, llmCtx)

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(c.out, "you> ")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			fmt.Fprintln(c.out)
			if err != nil {
				return fmt.Errorf("console: read input: %w", err)
			}
			return nil
		case line := <-lines:
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == quitCommand {
				return nil
			}
			llmCtx.AddUserMessage(line)
			c.reply(ctx, llmCtx)
		}
	}
}

func (c *Console) reply(ctx context.Context, llmCtx *core.LLMContext) {
	text, err := c.responder.Respond(ctx, llmCtx, c.agent.Tools)
	if err != nil {
		c.logger.With(map[string]any{"error": err}).Error("reply failed")
		fmt.Fprintln(c.out, "agent> Sorry, I lost my train of thought. Could you say that again?")
		return
	}
	fmt.Fprintf(c.out, "agent> %s\n", text)
}
