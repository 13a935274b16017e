// Package builder orchestrates deck builds: outline loading, fragment
// resolution, composition and output writing.  Builds are single-threaded,
// one-shot batch transformations with fail-fast semantics - an unresolved
// topic aborts the build before any output is produced.
package builder
