/*
Package ports defines the interfaces (ports) the onboarding core uses to reach
the outside world.

Following Hexagonal Architecture, the services in pkg/sequence, pkg/people and
pkg/trigger depend only on these contracts; adapters under pkg/adapters
implement them.

  - DocumentStore: JSON document persistence (memory, Redis, Postgres).
  - DistributedLocker: cross-replica locks that serialise edits of one sequence.
  - ActionDispatcher: delivery of side-effects (messages, notifications, provisioning).
*/
package ports
