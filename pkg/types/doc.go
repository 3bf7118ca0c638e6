// Package types defines the shared data types and collaborator
// interfaces used across the Mnemosyne cache: statistics structures,
// entry priorities, memory-pressure levels, and the contracts for
// size estimation, value loading, and memory monitoring.
package types
