// Package link keeps a serial link to the sensor board alive.
//
// Manager opens the port, reads lines and hands them to a LineHandler.
// Missing devices and lost links are retried after a fixed backoff,
// only an invalid configuration stops the Manager with an error.
package link
