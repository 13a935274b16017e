// Package model contains the in-memory representation of deck outlines and
// composed documents used by the decker engine.
//
// An outline is typically loaded from a YAML manifest or an RST index file
// into the Outline structure; composing it against a fragment store yields a
// Document, the ordered concatenation of resolved fragments.
package model
