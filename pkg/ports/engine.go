package ports

import "context"

// ActionCaller is the surface transport adapters (HTTP, MCP, CLI) drive.
// It is implemented by eventable.Model.
type ActionCaller interface {
	// Call invokes the dynamic entry point with a method name and positional parameters.
	Call(ctx context.Context, method string, params ...any) (any, error)

	// Actions lists the handler names currently registered on the model.
	Actions() []string
}
