// Package aggregates implements the aggregate contracts on top of the table repos.
//
// Every write runs inside one TxRunner transaction and maps failures through MapError.
package aggregates
