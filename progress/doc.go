// Package progress provides a context-carried counter tracker for build
// pipelines.  Services record deltas as they load outlines, resolve
// fragments and compose sections; callers observe snapshots through an
// OnChange callback.
package progress
