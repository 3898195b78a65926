// Package model contains the in-memory representation of a scheduling batch:
// process records, the rows they are built from and the snapshots the
// scheduler publishes after every transition.
//
// Records are created in bulk with NewBatch and mutated exclusively by the
// scheduler loop; everything handed out to observers is a value copy.
package model
