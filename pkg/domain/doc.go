/*
Package domain contains the core vocabulary of eventable.

It is kept free of I/O and third-party dependencies. Everything here is either a
plain value type or a pure function.

# Naming Convention

An action token such as "publish" maps to three derived names:

  - HandlerName: "actionPublish", the handler that implements the action.
  - BeforeEvent: "beforePublish", emitted before the handler runs.
  - AfterEvent: "afterPublish", emitted after the handler returned without error.

# Key Entities

  - ActionCall: the method name and parameters of one dynamic call.
  - ModelEvent: a lifecycle notification delivered to listeners.
  - DispatchEvent: the outcome of one call, reported through LifecycleHooks.
*/
package domain
