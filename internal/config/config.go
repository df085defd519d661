// Package config loads manifold's runtime configuration from a KDL file,
// applying documented defaults when the file is absent, mirroring the
// teacher's project/index/performance config sections.
package config

// Config is the full set of options manifold's core recognizes (spec §6).
type Config struct {
	Project Project
	Encode  Encode
	Ingest  Ingest
	Search  Search
	Redis   Redis
	Watch   Watch
}

// Project identifies the repository being indexed.
type Project struct {
	Root string
	Name string
}

// Encode configures the signature encoder (C1).
type Encode struct {
	WindowBytes      int     // size of the sliding window in bytes
	StrideBytes      int     // step between windows
	Precision        int     // decimal digits in signature components
	HazardPercentile float64 // quantile used for the hazard gate
}

// Ingest configures the repo ingestor (C4).
type Ingest struct {
	MaxBytesPerFile   int64   // ingest read cap per file
	ComputeChaos      bool    // whether ingest populates `chaos`
	Lite              bool    // skip chaos for docs/tests/binaries
	CoverageThreshold float64 // verify-snippet pass bar
	ClearFirst        bool    // wipe namespace before ingest
}

// Search configures retrieval defaults (C6).
type Search struct {
	MaxResults int
}

// Redis configures the index-store connection (C3).
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Watch configures the filesystem watcher (C5).
type Watch struct {
	Enabled    bool
	DebounceMs int
}

// Default returns manifold's documented defaults (spec §6).
func Default() *Config {
	return &Config{
		Project: Project{Root: "."},
		Encode: Encode{
			WindowBytes:      512,
			StrideBytes:      384,
			Precision:        3,
			HazardPercentile: 0.8,
		},
		Ingest: Ingest{
			MaxBytesPerFile:   512 * 1024,
			ComputeChaos:      true,
			Lite:              false,
			CoverageThreshold: 0.5,
			ClearFirst:        false,
		},
		Search: Search{
			MaxResults: 100,
		},
		Redis: Redis{
			Addr: "127.0.0.1:6379",
			DB:   0,
		},
		Watch: Watch{
			Enabled:    true,
			DebounceMs: 100,
		},
	}
}
