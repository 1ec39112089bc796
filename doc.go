/*
Package onboard is the admin side of an employee onboarding service.

Administrators compose sequences: ordered, conditional timelines of onboarding
items (to-dos, resources, introductions, badges, appointments, preboarding
pages, external messages, admin tasks and account provisions). Sequences are
assigned to new hires, and their conditions fire unconditionally, on a day
relative to the start day, or once a set of to-dos is completed.

# Architecture

The domain lives in pkg/domain and is persisted as JSON documents behind the
ports.DocumentStore interface, implemented in memory, on Redis and on
PostgreSQL. Services in pkg/sequence, pkg/templates, pkg/people,
pkg/admintasks, pkg/integrations and pkg/trigger own the rules; the HTTP, MCP
and CLI adapters only translate.

Side effects (messages, admin notifications, account provisioning, login
credentials) are emitted as domain.ActionRequest values through a
ports.ActionDispatcher. The host decides how they are delivered: the default
dispatcher logs them, the Redis outbox appends them to a stream.

# Usage

	cfg, err := config.Load("onboard.yaml")
	if err != nil {
		log.Fatal(err)
	}
	app, err := onboard.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	seq, err := app.Sequences.Create(ctx)
*/
package onboard
