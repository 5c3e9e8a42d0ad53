// Package services implements the driving ports: the chunk selector, the
// history compactor, and the two context assemblers built on them.
//
// Services reach infrastructure only through driven ports, so every
// backend, store, and loader can be replaced by a test double.
package services
