// Package outline implements loading, parsing and caching of deck outlines
// from YAML manifests and RST include indexes.
package outline
