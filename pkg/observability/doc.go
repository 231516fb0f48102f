/*
Package observability provides tools for monitoring the eventable dispatcher.

It includes notifier decorators (logging, Prometheus counting, fan-out) and
lifecycle hooks that record every dynamic call with its resolving strategy.
*/
package observability
