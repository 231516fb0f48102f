/*
Package ports defines the interfaces that decouple the eventable dispatch core from
its collaborators.

# Key Interfaces

  - Notifier: delivers model events ("beforePublish", "afterPublish", ...).
  - HaltingNotifier: a Notifier whose listeners may veto an event.
  - Resolver: one step in the ordered handler resolution chain.
  - ActionCaller: the surface driven by transport adapters.

RunNotifierContract is a reusable test suite for Notifier implementations.
*/
package ports
