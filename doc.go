// Package rrsim provides a Round-Robin process scheduling simulator.
//
// A dataset holds catalogs of process rows grouped by kind (cpu or
// memoria). Loading a catalog turns its rows into a batch of records whose
// service time is the quantum times the length of the record name. The
// scheduler then serves the batch one slice at a time, publishing a
// snapshot after every transition so a presentation layer can animate the
// Ready, Running and Done containers.
//
// End-users typically interact with the simulator via the Service façade
// exposed by the root package:
//
//	srv, _ := rrsim.New()
//	rt := srv.Runtime()
//	_ = rt.OpenDataset(ctx, "procesos.db")
//	_ = rt.LoadCatalog(ctx, 1)
//	rt.Start(ctx)
//	_ = rt.Wait(ctx)
//	done := rt.Snapshot().Done
package rrsim
