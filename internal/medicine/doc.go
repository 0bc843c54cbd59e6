// Package medicine manages the medicine schedules synced to dispensers.
//
// Each medicine belongs to one device and names a dose, a daily time and
// the physical box slot that holds it. The enabled flag keeps retired
// entries around without pushing them to the device.
package medicine
