// Package meta provides asset loading for outline manifests and engine
// configuration.  It wraps viant/afs so that assets can come from the local
// file system, memory, embedded files or any cloud scheme afs supports, and
// expands ${env.KEY} references before decoding.
package meta
