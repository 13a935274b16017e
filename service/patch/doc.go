// Package patch provides transactional editing of fragment sources: session
// scoped Add/Update/Delete/Move operations with per-invocation snapshots,
// unified-diff generation and verified patch application with rollback.
package patch
