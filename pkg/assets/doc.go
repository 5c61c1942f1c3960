// Package assets builds the engine's asset subsystems on top of resource
// pools.
//
// A Manager owns one pool per subsystem, sized from config.EngineConfig:
//
//   - documents: YAML and JSON files decoded into generic maps, shared by key
//   - blobs: raw file bytes (images, audio, tile data), shared by key
//   - scratch: private working state, one payload per request, optionally
//     seeded from a template document
//
// Keys are slash-separated paths relative to the asset root. A key ending in
// a compression extension (.gz, .zst, .lz4, ...) is unpacked on load, so
// "levels/forest.yaml.zst" decodes as YAML.
//
//	mgr, err := assets.NewManager(cfg, assets.WithFs(afero.NewOsFs()))
//	level, err := mgr.Documents().LoadByKey(ctx, "levels/forest.yaml")
//	name, _ := level.String("level.name")
//	defer mgr.Documents().Release(level)
//
// Like the pools it owns, a Manager is meant for a single goroutine, usually
// the game loop. Update runs memory maintenance from that loop.
package assets
