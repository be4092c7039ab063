package native

import "errors"

// Package errors for the wgpu-backed device.
var (
	// ErrNilHALDevice is returned when creating a backend without a HAL device.
	ErrNilHALDevice = errors.New("native: HAL device is nil")

	// ErrNilQueue is returned when creating a backend without a HAL queue.
	ErrNilQueue = errors.New("native: HAL queue is nil")

	// ErrNilDesc is returned when CreateStack receives a nil descriptor.
	ErrNilDesc = errors.New("native: stack descriptor is nil")

	// ErrBadProvider is returned when SetDeviceProvider receives a value
	// that is not a gpucontext.DeviceProvider.
	ErrBadProvider = errors.New("native: provider is not a gpucontext.DeviceProvider")

	// ErrBadResolveTarget is returned when a resolve command targets
	// something other than a HAL buffer.
	ErrBadResolveTarget = errors.New("native: resolve target is not a HAL buffer")

	// ErrRecorderFinished is returned when recording into a recorder that
	// has already been finished.
	ErrRecorderFinished = errors.New("native: resolve recorder already finished")

	// ErrStateReleased is returned when operating on released resolve state.
	ErrStateReleased = errors.New("native: resolve state has been released")
)
