// Package aggregates implements the domain aggregate contracts on GORM.
//
// Every write runs through executeWrite: one DB transaction, errors mapped
// into the aggregate taxonomy, latency and conflicts reported through Hooks.
package aggregates
