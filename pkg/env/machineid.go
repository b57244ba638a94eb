// Package env provides host identity used to name devices.
package env

import (
	"os"
	"strings"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "analog.go"

// MachineID retrieves an ID identifying the machine.
// It is hashed with the application ID so the raw machine ID is never
// published, and falls back to the hostname.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err == nil {
		return id[:16]
	}
	glog.Warningf("machine id not available: %v", err)
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return Sanitize(host)
}

// Sanitize makes s usable as a single MQTT topic level.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '+', '#', ' ':
			return '_'
		}
		return r
	}, s)
}
