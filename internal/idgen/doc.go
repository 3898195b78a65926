// Package idgen wraps the UUID generator used for batch and message
// identifiers so that tests can pin identifiers to fixed values.
package idgen
