// Package aggregates defines domain-facing aggregate contracts.
//
// Contracts here carry no persistence or transport detail; each one names a
// write boundary whose invariants hold atomically.
package aggregates
