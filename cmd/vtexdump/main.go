// Command vtexdump runs the virtual texture runtime headlessly over the
// noop GPU backend and dumps its state: it creates a stack, requests a
// region, simulates producer frames, and prints residency at the end.
package main

import (
	"flag"
	"image/png"
	"log"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/vtex"
	"github.com/gogpu/vtex/backend/native"
	"github.com/gogpu/vtex/config"
)

func main() {
	var (
		cfgPath  = flag.String("config", "", "YAML config file")
		size     = flag.Uint("size", 4096, "virtual texture edge in texels")
		tile     = flag.Uint("tile", 128, "tile edge in texels")
		budget   = flag.Uint("budget", 64, "request budget per frame")
		frames   = flag.Int("frames", 8, "producer frames to simulate")
		tilesPNG = flag.String("tiles-png", "", "write the final tile occupancy image to this file")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		log.Fatalf("Failed to create instance: %v", err)
	}
	defer instance.Destroy()
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer openDev.Device.Destroy()

	backend, err := native.New(openDev.Device, openDev.Queue)
	if err != nil {
		log.Fatalf("Failed to create backend: %v", err)
	}

	sys, err := config.NewSystem(backend, cfg, os.Stderr)
	if err != nil {
		log.Fatalf("Failed to create system: %v", err)
	}
	if *tilesPNG != "" {
		sys.SetDebugTiles(true)
	}

	st, err := sys.CreateStack("demo", vtex.StackCreationParams{
		Width:               uint32(*size),
		Height:              uint32(*size),
		TileSize:            uint32(*tile),
		MaxRequestsPerFrame: uint32(*budget),
		Layers:              []gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm},
	})
	if err != nil {
		log.Fatalf("Failed to create stack: %v", err)
	}
	defer sys.ReleaseStack(st)

	if err := st.RequestRegion(vtex.Rect{Width: uint32(*size), Height: uint32(*size)}, 0, vtex.AllMips); err != nil {
		log.Fatalf("Failed to request region: %v", err)
	}

	for frame := 0; frame < *frames; frame++ {
		if err := sys.Update(); err != nil {
			log.Fatalf("Frame %d update failed: %v", frame, err)
		}
		reqs, err := st.ActiveRequests()
		if err != nil {
			log.Fatalf("Frame %d sync failed: %v", frame, err)
		}
		log.Printf("frame %d: %d tile request(s)", frame, reqs.Len())

		if frame == *frames-1 && *tilesPNG != "" {
			writeTileImage(sys, st, *tilesPNG)
		}

		// Pretend the producer uploaded every tile this frame.
		for i := 0; i < reqs.Len(); i++ {
			req, err := reqs.At(i)
			if err != nil {
				log.Fatalf("Frame %d request %d: %v", frame, i, err)
			}
			if err := reqs.UpdateStatus(req, vtex.StatusComplete); err != nil {
				log.Fatalf("Frame %d request %d: %v", frame, i, err)
			}
		}
		if err := reqs.Apply(); err != nil {
			log.Fatalf("Frame %d apply failed: %v", frame, err)
		}
	}

	os.Stdout.WriteString(sys.DumpAll())
	log.Printf("resident tiles: %d", backend.ResidentTileCount(st.Handle()))
}

// writeTileImage renders the mip-0 request occupancy of the current
// snapshot as a PNG.
func writeTileImage(sys *vtex.System, st *vtex.Stack, path string) {
	img, err := sys.DebugTileImage(st, 0, 4)
	if err != nil {
		log.Printf("Skipping tile image: %v", err)
		return
	}
	f, err := os.Create(path)
	if err != nil {
		log.Printf("Failed to create %s: %v", path, err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Printf("Failed to encode %s: %v", path, err)
		return
	}
	log.Printf("Tile occupancy written to %s", path)
}
