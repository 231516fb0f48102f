/*
Package dispatch resolves dynamic action calls through an ordered chain of strategies.

# Strategies

  - Convention: looks up the handler "action<Name>" in a registry and wraps it with
    the "before<Name>" and "after<Name>" notifications.
  - Fallback: hands the call, unchanged, to a catch-all function.

The chain always ends in an implicit "unsupported" step that fails the call with
domain.ErrUnsupportedAction.

# Usage

	reg := registry.NewRegistry()
	reg.RegisterAction("publish", publish)

	d := dispatch.New(dispatch.WithResolvers(
		dispatch.Convention(reg, notifier, dispatch.WithPayload(post)),
		dispatch.Fallback(legacy),
	))

	_, err := d.Call(ctx, "publish", 42)
*/
package dispatch
