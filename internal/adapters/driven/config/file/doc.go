// Package file provides the TOML-backed configuration store.
// Configuration lives in ~/.hilite/config.toml by default; nested tables
// flatten to dot-notation keys (store.mode, library.roots, ...).
package file
