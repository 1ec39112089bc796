/*
Package domain contains the core domain models of the onboarding service.

It defines sequences, their conditions, the heterogeneous items a condition
assigns (to-dos, resources, messages, admin tasks, account provisions...) and
the people those items are assigned to. This package is kept free of I/O and
persistence concerns, following Hexagonal Architecture principles.

# Key Entities

  - Sequence: A named onboarding plan made of conditions.
  - Condition: A trigger (before/after start, to-do completion, none) plus the items it assigns.
  - Item: Anything a condition can hold. Templated kinds live in the template library and are
    cloned when edited inside a sequence.
  - User: New hires and colleagues, with the items and conditions assigned to them.
  - ActionRequest: A side-effect (message, admin task notification, provisioning) for the host.
*/
package domain
