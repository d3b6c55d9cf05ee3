// Package ordering plans the order shifts that keep a group of siblings
// densely numbered 1..N.
//
// Planning is pure. A Plan lists range shifts to apply to the group and the
// order the primary record ends up with. Executing a plan atomically is the
// caller's job.
package ordering
