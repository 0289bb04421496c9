// Package aggregates defines the write boundaries whose invariants must hold atomically.
//
// Contracts here carry no persistence or transport details.
package aggregates
