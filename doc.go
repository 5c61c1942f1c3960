// Package mogul is the resource layer of the MoGUL game engine: fixed-capacity,
// reference-counted pools that every engine subsystem (sprites, fonts, audio,
// tile maps, levels, configuration documents) keeps its loaded assets in.
//
// A pool allocates all of its slots up front and never grows. Loading the same
// key twice hands back the same payload; releasing the last reference leaves
// the payload cached until a later load revives it or memory pressure evicts
// it, oldest first.
//
// # Quick Start
//
// Build an asset manager over a directory and load a document:
//
//	import (
//	    "context"
//	    "github.com/engineerOfLies/MoGUL-sub000/pkg/assets"
//	    "github.com/engineerOfLies/MoGUL-sub000/pkg/config"
//	)
//
//	cfg := config.NewEngineConfig("my-game")
//	cfg.Assets.Root = "./assets"
//
//	mgr, err := assets.NewManager(cfg)
//	if err != nil {
//	    return err
//	}
//	defer mgr.Close()
//
//	goblin, err := mgr.Documents().LoadByKey(ctx, "actors/goblin.yaml")
//	if err != nil {
//	    return err
//	}
//	defer mgr.Documents().Release(goblin)
//	hp, _ := goblin.Int("stats.hp")
//
// Call mgr.Update once per frame to run memory maintenance on the configured
// interval.
//
// # Key Packages
//
//	pkg/resource      - Generic Pool[T], typed handles, eviction
//	pkg/assets        - Asset manager: documents, blobs, scratch pools
//	pkg/compression   - Codecs for compressed asset files
//	pkg/config        - Engine and per-pool configuration
//	pkg/errors        - Structured error handling
//	pkg/logger        - Structured logging
//	pkg/metrics       - Prometheus pool metrics
//	pkg/observability - Tracing setup for loader spans
//
// # Command Line
//
//	mogul inspect actors/goblin.yaml tiles/forest.bin.zst
//	mogul config init mogul.yaml
//	mogul profile --duration 10s --cpuprofile cpu.prof
//
// Environment variables are supported with ${VAR_NAME} syntax in
// configuration files and as MOGUL_* overrides for command line flags.
package mogul
