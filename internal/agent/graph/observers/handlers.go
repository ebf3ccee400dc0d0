// Package observers logs eino component lifecycles through zerolog.
package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/Chative-core-poc-v1/salesbot/pkg/logger"
)

// NewAllCallbacks aggregates the chat model and prompt handlers into one
// callbacks.Handler.
func NewAllCallbacks() einocb.Handler {
	logger := logx.Component("graph")
	return callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler(logger)).
		Prompt(newPromptHandler(logger)).
		Handler()
}
