package rrsim

// Version is the simulator release, overridden at link time
var Version = "0.1.0"
