package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/eventable/internal/presentation/graph"
	"github.com/aretw0/eventable/internal/presentation/tui"
	httpadapter "github.com/aretw0/eventable/pkg/adapters/http"
	"github.com/aretw0/eventable/pkg/adapters/mcp"
	"github.com/aretw0/eventable/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrNoRedis is returned by commands that need the redis notifier.
var ErrNoRedis = errors.New("this command requires notifier: redis")

// Output formats for the actions command.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatMermaid  = "mermaid"
)

// ParseArgs decodes each command-line argument as JSON. Arguments that are
// not valid JSON are passed as plain strings.
func ParseArgs(raw []string) []any {
	params := make([]any, 0, len(raw))
	for _, arg := range raw {
		var v any
		if err := json.Unmarshal([]byte(arg), &v); err != nil {
			v = arg
		}
		params = append(params, v)
	}
	return params
}

// RunCall performs action. The standard output of process actions is copied
// to w. Events emitted during the call are printed when events is non-nil.
func RunCall(ctx context.Context, rt *Runtime, action string, rawArgs []string, w io.Writer, events *tui.EventPrinter) error {
	if events != nil {
		unsubscribe := rt.Events.ListenAll(func(ctx context.Context, ev domain.ModelEvent) error {
			return events.Print(ev)
		})
		defer unsubscribe()
	}

	restore := rt.output.redirect(w)
	defer restore()

	return rt.Model.Do(ctx, action, ParseArgs(rawArgs)...)
}

// RunActions lists the registered actions in the given format.
func RunActions(rt *Runtime, w io.Writer, format string) error {
	handlers := rt.Model.Actions()

	switch format {
	case "", FormatText:
		for _, h := range handlers {
			action, _ := domain.ActionFromHandler(h)
			if desc := rt.Descriptions[h]; desc != "" {
				fmt.Fprintf(w, "%s\t%s\n", action, desc)
				continue
			}
			fmt.Fprintln(w, action)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(handlers)
	case FormatMarkdown:
		md := tui.ActionsMarkdown(handlers, rt.Descriptions)
		render, err := tui.NewRenderer()
		if err != nil {
			_, err = io.WriteString(w, md)
			return err
		}
		out, err := render(md)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case FormatMermaid:
		var overlay *graph.Overlay
		if rt.Redis != nil {
			overlay = &graph.Overlay{FiredEvents: firedEvents(context.Background(), rt, handlers)}
		}
		_, err := io.WriteString(w, graph.GenerateMermaid(handlers, overlay))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func firedEvents(ctx context.Context, rt *Runtime, handlers []string) []string {
	var fired []string
	for _, h := range handlers {
		action, ok := domain.ActionFromHandler(h)
		if !ok {
			continue
		}
		for _, ev := range []string{domain.BeforeEvent(action), domain.AfterEvent(action)} {
			history, err := rt.Redis.History(ctx, ev)
			if err != nil {
				rt.Logger.Warn("History unavailable", "event", ev, "error", err)
				return fired
			}
			if len(history) > 0 {
				fired = append(fired, ev)
			}
		}
	}
	return fired
}

// NewHTTPHandler builds the serve command's handler: the action API, the event
// stream and, when enabled, Prometheus metrics.
func NewHTTPHandler(rt *Runtime) http.Handler {
	streams := httpadapter.NewStreamManager(rt.Logger)
	rt.Events.ListenAll(streams.Listen)

	api := httpadapter.NewHandler(rt.Model,
		httpadapter.WithLogger(rt.Logger),
		httpadapter.WithStreams(streams),
	)
	if !rt.Config.HTTP.Metrics {
		return api
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(rt.Prometheus, promhttp.HandlerOpts{}))
	mux.Handle("/", api)
	return mux
}

// RunServe serves the HTTP API on addr until ctx is done.
func RunServe(ctx context.Context, rt *Runtime, addr string) error {
	if addr == "" {
		addr = rt.Config.HTTP.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHTTPHandler(rt),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.Logger.Info("HTTP server listening", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.Config.HTTP.ShutdownTimeout)
		defer cancel()
		rt.Logger.Info("Shutting down HTTP server", "reason", stopReason(ctx))
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

// RunMCP serves the model over MCP on stdio, or on SSE when sseAddr is set.
func RunMCP(ctx context.Context, rt *Runtime, sseAddr string) error {
	srv := mcp.NewServer(rt.Model, mcp.WithLogger(rt.Logger))
	if sseAddr != "" {
		err := srv.ServeSSE(ctx, sseAddr)
		if ctx.Err() != nil {
			rt.Logger.Info("MCP server stopped", "reason", stopReason(ctx))
		}
		return err
	}
	return srv.ServeStdio()
}

// RunWatch prints events published to Redis that match pattern until ctx is done.
func RunWatch(ctx context.Context, rt *Runtime, pattern string, printer *tui.EventPrinter) error {
	if rt.Redis == nil {
		return ErrNoRedis
	}
	if pattern == "" {
		pattern = "*"
	}

	events, err := rt.Redis.Watch(ctx, pattern)
	if err != nil {
		return err
	}
	rt.Logger.Info("Watching events", "pattern", pattern)

	for ev := range events {
		if err := printer.Print(ev); err != nil {
			return err
		}
	}
	rt.Logger.Info("Stopped watching", "reason", stopReason(ctx))
	return nil
}

// RunHistory prints the stored envelopes of each event, oldest first, merged by time.
func RunHistory(ctx context.Context, rt *Runtime, events []string, printer *tui.EventPrinter) error {
	if rt.Redis == nil {
		return ErrNoRedis
	}

	var all []domain.ModelEvent
	for _, name := range events {
		history, err := rt.Redis.History(ctx, strings.TrimSpace(name))
		if err != nil {
			return err
		}
		for _, env := range history {
			all = append(all, env.ModelEvent())
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp.Before(all[j].Timestamp) })

	for _, ev := range all {
		if err := printer.Print(ev); err != nil {
			return err
		}
	}
	return nil
}
