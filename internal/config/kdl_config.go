package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// DefaultFileName is the config file manifold looks for in the project root.
const DefaultFileName = ".manifold.kdl"

// Load reads configuration from path, falling back to Default() fields for
// anything the file omits. A missing file is not an error: Default() is
// returned with Project.Root resolved from projectRoot.
func Load(path, projectRoot string) (*Config, error) {
	cfg := Default()

	absRoot, err := filepath.Abs(projectRoot)
	if err == nil {
		cfg.Project.Root = absRoot
	} else {
		cfg.Project.Root = projectRoot
	}

	if path == "" {
		path = filepath.Join(projectRoot, DefaultFileName)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := parseKDL(string(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cfg.Project.Root != "" && !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(projectRoot, cfg.Project.Root))
	}

	return cfg, nil
}

func parseKDL(content string, cfg *Config) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return err
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "encode":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "window_bytes":
					assignInt(cn, &cfg.Encode.WindowBytes)
				case "stride_bytes":
					assignInt(cn, &cfg.Encode.StrideBytes)
				case "precision":
					assignInt(cn, &cfg.Encode.Precision)
				case "hazard_percentile":
					assignFloat(cn, &cfg.Encode.HazardPercentile)
				}
			}
		case "ingest":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_bytes_per_file":
					if v, ok := firstIntArg(cn); ok {
						cfg.Ingest.MaxBytesPerFile = int64(v)
					}
				case "compute_chaos":
					assignBool(cn, &cfg.Ingest.ComputeChaos)
				case "lite":
					assignBool(cn, &cfg.Ingest.Lite)
				case "coverage_threshold":
					assignFloat(cn, &cfg.Ingest.CoverageThreshold)
				case "clear_first":
					assignBool(cn, &cfg.Ingest.ClearFirst)
				}
			}
		case "search":
			for _, cn := range n.Children {
				if nodeName(cn) == "max_results" {
					assignInt(cn, &cfg.Search.MaxResults)
				}
			}
		case "redis":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "addr":
					if s, ok := firstStringArg(cn); ok {
						cfg.Redis.Addr = s
					}
				case "password":
					if s, ok := firstStringArg(cn); ok {
						cfg.Redis.Password = s
					}
				case "db":
					assignInt(cn, &cfg.Redis.DB)
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					assignBool(cn, &cfg.Watch.Enabled)
				case "debounce_ms":
					assignInt(cn, &cfg.Watch.DebounceMs)
				}
			}
		}
	}

	return nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func assignString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

func assignInt(n *document.Node, target *int) {
	if v, ok := firstIntArg(n); ok {
		*target = v
	}
}

func assignFloat(n *document.Node, target *float64) {
	if v, ok := firstFloatArg(n); ok {
		*target = v
	}
}

func assignBool(n *document.Node, target *bool) {
	if v, ok := firstBoolArg(n); ok {
		*target = v
	}
}
