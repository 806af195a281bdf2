// Package runloop provides the main scheduling context. Work that must not
// race with user actions (completion callbacks, UI updates) is posted to a
// Dispatcher and runs there one item at a time.
package runloop
