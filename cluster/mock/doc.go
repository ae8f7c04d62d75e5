// Package mock provides a test double for the cluster.Client interface.
//
// The mock records every call and supports behavior injection via function
// fields, so pipeline and rollover tests can run without a live cluster.
package mock
