// Package trigger fires the conditions linked to new hires.
//
// A condition fires at most once per user. Firing assigns the templated items
// of the condition to the user and turns the sequence-only items into actions:
// external messages and account provisions go to the dispatcher, pending admin
// tasks become admin tasks.
//
// Conditions fire from three places:
//   - AddSequences, for unconditioned conditions;
//   - Tick, for conditions scheduled before or after the start day;
//   - CompleteToDo, for conditions waiting on to-dos.
package trigger
