/*
Package sequence implements the composition engine behind the sequence editor.

A sequence is a list of conditions; each condition references items of several
kinds (to-dos, resources, messages, admin tasks, account provisions...). The
Service keeps that graph consistent while items are added, swapped for edited
copies of templates, or removed:

  - editing a template from inside a sequence creates a private copy and swaps
    it in, so the template library is never modified from a sequence;
  - every sequence keeps exactly one unconditioned condition;
  - mutations of one sequence are serialised through lock.Manager.
*/
package sequence
