// Package analog decodes the analog sensor board line protocol.
package analog

// The board streams ASCII frames, one per line:
//
//	$TAG,v1,v2,...,vN
//
// Every tag has a fixed schema of floating point and integer fields.
// Lines not starting with '$' are boot banners or noise and are ignored.
//
// Producer: analog sensor board firmware
// Consumer: link manager (pkg/link)
