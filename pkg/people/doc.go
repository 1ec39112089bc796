// Package people manages new hires and their colleagues.
//
// New hires get sequences assigned through the trigger processor, which fires
// unconditioned conditions immediately and links the rest. Colleagues are
// every user, whatever the role.
package people
