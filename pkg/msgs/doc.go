// Package msgs defines the messages published for monitors.
package msgs

// Messages are protobuf encoded. The structs carry protobuf tags and
// implement proto.Message directly, no generated code is involved.
//
// Producer: analogd
// Consumer: analogcli, any MQTT subscriber
