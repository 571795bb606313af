// Package store records sensitivity runs. [Recorder] is a step handler
// keeping the trajectory of state and both Jacobian blocks per accepted
// step; [ExportJSON] writes a recorded run to a file or stdout.
package store
