// Package graph validates the steps of a workflow definition and indexes them
// into a dependency graph keyed by step name. A graph returned by Resolve is
// acyclic, every dependency resolves to a step of the same graph, and it is
// never modified afterwards, so the run engine can share it between step
// goroutines without locking.
package graph
