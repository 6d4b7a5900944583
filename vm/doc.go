// Package vm implements the Skive execution engine.
//
// This package contains:
//   - The sparse byte grid and its bulk row/column operations
//   - Label, snapshot and vector registries
//   - The token-buffered input stream behind ? and ??
//   - The interpreter loop over a compiled program
package vm
