// Package command publishes backend-to-device messages.
//
// Three outbound shapes exist: medicine schedule syncs to a device's
// config topic, direct commands to its command topic, and fleet-wide
// broadcasts. All are QoS 1 and never retained.
//
// The publisher does not retry; transport failures surface to the caller,
// who decides whether the operation is worth repeating.
package command
