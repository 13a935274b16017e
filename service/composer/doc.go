// Package composer turns an outline and its resolved fragments into a
// composed document: an order-preserving, content-preserving concatenation
// with per-format separators.  There is no state machine - composition is a
// single-pass, stateless transformation.
package composer
