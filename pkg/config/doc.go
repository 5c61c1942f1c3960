// Package config provides the engine configuration for MoGUL resource pools.
//
// # Key Features
//
// - EngineConfig: one structure sizing every pool the engine creates
// - Structured sections: Logging, Observability, Maintenance, Assets, Pools
// - Environment variable substitution with ${VAR_NAME} and ${VAR_NAME:-default}
// - Defaults for the built-in pools (documents, blobs, scratch) and validation
//
// # Usage
//
// ## Loading
//
//	cfg, err := config.LoadEngineConfig(afero.NewOsFs(), "engine.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// ## Programmatic Creation
//
//	cfg := config.NewEngineConfig("editor")
//	cfg.Pools["sprites"] = config.PoolConfig{Capacity: 4096}
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
// ## Environment Variable Substitution
//
//	# engine.yaml
//	name: game
//	assets:
//	  root: ${MOGUL_ASSET_ROOT:-./assets}
//	pools:
//	  blobs:
//	    capacity: 4096
//
// Pools listed in the file replace the default entry of the same name; pools
// the file leaves out keep their defaults.
package config
