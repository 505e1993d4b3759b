// Package config defines the configuration of a node.
//
// The Config object carries the gossip interval, the gossip batch limit, the
// optional HTTP service address and the logging options. All values have
// defaults (see NewDefaultConfig) and can be overridden by command line flags,
// RUMOR_* environment variables or a config file (see cmd/rumor).
//
// Logs are written to standard error because standard output is reserved for
// the protocol.
package config
