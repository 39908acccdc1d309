// Package storage contains string key/value backends for zin: an in-memory
// map and a BadgerDB-backed store. Backends deal only in opaque strings and
// know nothing about what the facade writes into them.
package storage
