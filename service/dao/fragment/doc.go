// Package fragment implements the fragment store: the mapping from topic
// identifiers to slide-content sources.  Fragments are opaque - the store
// moves bytes, it never interprets markup.
package fragment
