/*
Package eventable gives model-like types a uniform "perform action with lifecycle notifications" capability.

# Concept

A call to the dynamic entry point with a method name m resolves a handler named
"action" + Capitalize(m). When the handler exists it is wrapped with two model
events, "before" + Capitalize(m) and "after" + Capitalize(m), delivered through an
injected notifier. When no handler matches, the call is delegated to a fallback.
When nothing handles it, the call fails with domain.ErrUnsupportedAction.

The dispatch core holds no state between calls and owns no event storage. Adapters
under pkg/adapters supply notifiers (in-process, Redis) and outer surfaces (HTTP, MCP).

# Usage

Embed a *Model and declare Action<Name> methods:

	type Post struct {
		*eventable.Model
		Title string
	}

	func (p *Post) ActionPublish(id int, title string) {
		p.Title = title
	}

	func main() {
		events := memory.New()
		events.Listen("afterPublish", func(ctx context.Context, ev domain.ModelEvent) error {
			log.Println("published", ev.Payload.(*Post).Title)
			return nil
		})

		post := &Post{}
		m, err := eventable.New(post, eventable.WithNotifier(events))
		if err != nil {
			log.Fatal(err)
		}
		post.Model = m

		if err := post.Do(context.Background(), "publish", 42, "hello"); err != nil {
			log.Fatal(err)
		}
	}
*/
package eventable
