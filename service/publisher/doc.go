// Package publisher copies built deck assets to a versioned publish
// location, maintains the latest pointer for each deck and produces a
// tar.gz pack for offline distribution.  Optional post-publish hooks run
// shell commands locally or over SSH.
package publisher
