package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/phuslu/log"

	"github.com/dyike/StockInsights/consts"
	"github.com/dyike/StockInsights/internal/tools"
)

const defaultMaxRounds = 3

// Assistant answers a stock question by letting the model call market-data
// tools for a bounded number of rounds.
type Assistant struct {
	chat      model.ToolCallingChatModel
	withTools model.ToolCallingChatModel
	executor  tools.Executor
	maxRounds int
	apiKeyVar string
	handlers  []callbacks.Handler
}

type AssistantOption func(*Assistant)

func WithMaxRounds(n int) AssistantOption {
	return func(a *Assistant) {
		if n > 0 {
			a.maxRounds = n
		}
	}
}

// WithAPIKeyVar sets the variable named in the unreachable-model apology.
func WithAPIKeyVar(name string) AssistantOption {
	return func(a *Assistant) {
		a.apiKeyVar = name
	}
}

func WithCallbacks(handlers ...callbacks.Handler) AssistantOption {
	return func(a *Assistant) {
		a.handlers = append(a.handlers, handlers...)
	}
}

func NewAssistant(chat model.ToolCallingChatModel, executor tools.Executor, opts ...AssistantOption) (*Assistant, error) {
	withTools, err := chat.WithTools(tools.Definitions())
	if err != nil {
		return nil, fmt.Errorf("bind tools: %w", err)
	}

	a := &Assistant{
		chat:      chat,
		withTools: withTools,
		executor:  executor,
		maxRounds: defaultMaxRounds,
		apiKeyVar: "OPENAI_API_KEY",
		handlers:  []callbacks.Handler{newLoggerCallback()},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// outcome is the result of the tool negotiation phase. When answered is
// set the model produced a direct reply and history ends just before it.
type outcome struct {
	text     string
	answered bool
	history  []*schema.Message
}

// Answer runs the negotiation and returns the final text. The error is
// reserved for cancellation and internal faults; upstream failures come
// back as user-facing text.
func (a *Assistant) Answer(ctx context.Context, question string) (string, error) {
	out, err := a.negotiate(ctx, question)
	if err != nil {
		return "", err
	}
	return out.text, nil
}

// Stream runs the same negotiation, then re-asks the model for the final
// answer as a stream. Whenever that stream errors or stays empty, the answer
// already obtained is yielded whole, even after partial output.
func (a *Assistant) Stream(ctx context.Context, question string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		out, err := a.negotiate(ctx, question)
		if err != nil {
			yield("", err)
			return
		}
		if !out.answered {
			yield(out.text, nil)
			return
		}

		sr, err := a.chat.Stream(a.callbackCtx(ctx), out.history)
		if err != nil {
			log.Warn().Err(err).Msg("streaming final answer failed, using buffered answer")
			yield(out.text, nil)
			return
		}
		defer sr.Close()

		emitted := false
		for {
			chunk, err := sr.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				log.Warn().Err(err).Bool("partial", emitted).Msg("final answer stream interrupted, sending buffered answer")
				yield(out.text, nil)
				return
			}
			if chunk == nil || chunk.Content == "" {
				continue
			}
			emitted = true
			if !yield(chunk.Content, nil) {
				return
			}
		}

		if !emitted {
			yield(out.text, nil)
		}
	}
}

func (a *Assistant) negotiate(ctx context.Context, question string) (*outcome, error) {
	history := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(question),
	}

	for round := 1; round <= a.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := a.withTools.Generate(a.callbackCtx(ctx), history)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Error().Err(err).Int("round", round).Msg("chat model call failed")
			return &outcome{text: fmt.Sprintf(consts.MsgUpstreamUnreachable, a.apiKeyVar)}, nil
		}

		if len(resp.ToolCalls) == 0 {
			text := resp.Content
			if text == "" {
				text = consts.MsgEmptyAnswer
			}
			return &outcome{text: text, answered: true, history: history}, nil
		}

		history = append(history, resp)
		for _, tc := range resp.ToolCalls {
			result, err := a.runToolCall(ctx, tc)
			if err != nil {
				return nil, err
			}
			history = append(history, schema.ToolMessage(result, tc.ID))
		}
	}

	log.Warn().Int("rounds", a.maxRounds).Msg("tool rounds exhausted without an answer")
	return &outcome{text: consts.MsgIterationsExhausted}, nil
}

// runToolCall returns the JSON text of the tool result for one call.
func (a *Assistant) runToolCall(ctx context.Context, tc schema.ToolCall) (string, error) {
	raw := tc.Function.Arguments
	if raw == "" {
		raw = "{}"
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
		log.Warn().Str("tool", tc.Function.Name).Str("arguments", raw).Msg("unparsable tool arguments")
		return encode(map[string]string{"error": consts.ErrToolArgsUnparsable})
	}

	return encode(a.executor.Execute(ctx, tc.Function.Name, args))
}

func (a *Assistant) callbackCtx(ctx context.Context) context.Context {
	if len(a.handlers) == 0 {
		return ctx
	}
	return callbacks.InitCallbacks(ctx, modelRunInfo, a.handlers...)
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(b), nil
}
