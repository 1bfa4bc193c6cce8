// Package badger implements storage.VectorStore on an embedded BadgerDB
// instance. Points are stored as MUS-encoded values under prefixed keys and
// filtering happens by payload scan, which is plenty for single-node
// corpora and keeps the local mode dependency-free.
package badger
