// Package aggregates defines domain-facing aggregate contracts.
//
// These contracts avoid persistence and transport details and describe the write
// boundaries where invariants must be enforced atomically.
package aggregates
