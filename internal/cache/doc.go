// Package cache provides a byte-budgeted LRU for raw storage payloads.
//
// The caching storage backend keeps recently loaded signature files here so
// repeated index loads and clones skip the remote round trip.
package cache
