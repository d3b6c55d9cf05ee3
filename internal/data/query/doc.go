// Package query turns request parameters into storage-neutral listing
// queries: a resolved Page (offset, limit, sort) and a Predicate tree.
//
// Nothing in this package fails. Malformed paging input falls back to
// defaults and malformed filter values produce clauses that match nothing.
package query
