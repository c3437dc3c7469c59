package agents

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/phuslu/log"
)

type startKey struct{}

var modelRunInfo = &callbacks.RunInfo{
	Name:      "stock_assistant",
	Type:      "ChatModel",
	Component: components.ComponentOfChatModel,
}

// newLoggerCallback logs every chat model call with its latency and token usage.
func newLoggerCallback() callbacks.Handler {
	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
			in := model.ConvCallbackInput(input)
			if in != nil {
				log.Debug().Str("run", info.Name).
					Int("messages", len(in.Messages)).
					Int("tools", len(in.Tools)).
					Msg("chat model start")
			}
			return context.WithValue(ctx, startKey{}, time.Now())
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
			e := log.Info().Str("run", info.Name).Dur("latency", since(ctx))
			if out := model.ConvCallbackOutput(output); out != nil {
				if out.Message != nil {
					e = e.Int("tool_calls", len(out.Message.ToolCalls))
				}
				if out.TokenUsage != nil {
					e = e.Int("prompt_tokens", out.TokenUsage.PromptTokens).
						Int("completion_tokens", out.TokenUsage.CompletionTokens)
				}
			}
			e.Msg("chat model end")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			log.Error().Str("run", info.Name).Dur("latency", since(ctx)).Err(err).Msg("chat model error")
			return ctx
		}).
		Build()
}

func since(ctx context.Context) time.Duration {
	if start, ok := ctx.Value(startKey{}).(time.Time); ok {
		return time.Since(start)
	}
	return 0
}
