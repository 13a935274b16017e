// Package verify detects drift between written deck outputs and fresh
// in-memory compositions, reporting differences as unified diffs.
package verify
