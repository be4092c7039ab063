// Package vtex implements virtual texture paging and feedback resolution
// for the GoGPU ecosystem.
//
// # Overview
//
// A virtual texture exposes a sparse virtual address space much larger than
// GPU memory. Each frame, a GPU-produced feedback stream reports which tiles
// are visible; tiles that are not resident become tile requests that a
// producer services by streaming texture data in on demand.
//
// vtex provides the runtime for that loop:
//
//   - a fixed-capacity slot table tracking in-flight tile requests through a
//     small per-slot state machine (Free, Requested, Processing, terminal)
//   - a per-surface feedback resolver with a grow-only resize policy
//   - a stack manager owning the lifecycle of a virtual-texture-stack
//     resource behind a stable opaque handle
//   - a request list that snapshots active requests once per frame and
//     flushes status updates back as a single batched call
//   - a system coordinator with a per-frame tick and debug introspection
//
// # Quick Start
//
//	sys, err := vtex.NewSystem(device)
//	if err != nil { ... }
//
//	stack, err := sys.CreateStack("terrain", vtex.StackCreationParams{
//	    Width:               65536,
//	    Height:              65536,
//	    TileSize:            128,
//	    MaxRequestsPerFrame: 256,
//	    Layers:              []gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm},
//	})
//	if err != nil { ... }
//
//	// Per frame:
//	reqs, _ := stack.ActiveRequests()
//	for i := 0; i < reqs.Len(); i++ {
//	    req, _ := reqs.At(i)
//	    // ... stream tile data for req ...
//	    reqs.UpdateStatus(req, vtex.StatusComplete)
//	}
//	reqs.Apply()
//	sys.Update()
//
// # Threading
//
// The core is frame-driven and spawns no goroutines. Creation, request
// pulling, and binding for a given stack must be serialized by the caller
// (single-writer discipline). Native resource release is safe from any
// thread to support deterministic teardown.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Stack, RequestList, SlotTable, System
//   - feedback/: per-surface feedback resolver
//   - backend/native/: Device implementation over gogpu/wgpu HAL
//   - config/: YAML system configuration
package vtex
