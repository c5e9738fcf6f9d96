//go:build nogpu

// Package gpu is empty in nogpu builds; strokes render on the CPU.
package gpu

// SetDeviceProvider is a no-op in nogpu builds.
func SetDeviceProvider(provider any) error { return nil }
