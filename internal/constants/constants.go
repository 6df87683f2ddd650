// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "1.2-" + runtime.GOOS + "/" + runtime.GOARCH

// Physical validity limits applied by the range filter. Readings outside
// [Min, Max) are sensor faults.
const (
	WindSpeedMin = 0.0
	WindSpeedMax = 40.0

	PowerMin = -0.02
	PowerMax = 1.01
)

// Static rule thresholds. Power is normalized to rated power.
const (
	// LowWindPowerLimit is the largest power a turbine below cut-in may report
	LowWindPowerLimit = 0.04

	// ZeroPowerLimit is the power below which a running turbine counts as idle
	ZeroPowerLimit = 0.005

	// RatedPowerLimit is the power below which a turbine above rated speed counts as derated
	RatedPowerLimit = 0.995
)
