package depgraph

import "sort"

// Info is the per-file dependency record (mirrors DependencyInfo).
type Info struct {
	FilePath    string
	Imports     []string
	ImportedBy  []string
	BlastRadius int
	Depth       int
	IsCore      bool
}

// coreBlastRadiusThreshold mirrors the original's "arbitrary threshold".
const coreBlastRadiusThreshold = 5

// Graph is the built import/imported_by graph for a corpus of Python files.
type Graph struct {
	files map[string]*Info
}

// Build extracts imports from every file's source, resolves them against a
// module table built from the same file set, and assembles forward/reverse
// edges.
func Build(sources map[string]string) *Graph {
	files := make([]string, 0, len(sources))
	for rel := range sources {
		files = append(files, rel)
	}
	table := BuildModuleTable(files)

	g := &Graph{files: make(map[string]*Info, len(sources))}
	for rel := range sources {
		g.files[rel] = &Info{FilePath: rel}
	}

	for rel, src := range sources {
		imports := ExtractImports(src)
		g.files[rel].Imports = imports

		for _, imp := range imports {
			target, ok := table.Resolve(imp, rel)
			if !ok {
				continue
			}
			if target == rel {
				continue
			}
			if info, exists := g.files[target]; exists {
				info.ImportedBy = append(info.ImportedBy, rel)
			}
		}
	}

	g.analyzeAll()
	return g
}

func (g *Graph) analyzeAll() {
	for rel, info := range g.files {
		info.BlastRadius = g.blastRadius(rel)
		info.Depth = g.depth(rel)
		info.IsCore = info.BlastRadius > coreBlastRadiusThreshold
	}
}

// blastRadius is the size of the transitive closure over reverse edges
// (every file that would be impacted by a change to rel), excluding rel
// itself.
func (g *Graph) blastRadius(rel string) int {
	if _, ok := g.files[rel]; !ok {
		return 0
	}
	visited := map[string]bool{}
	stack := []string{rel}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if info, ok := g.files[cur]; ok {
			for _, importer := range info.ImportedBy {
				if !visited[importer] {
					stack = append(stack, importer)
				}
			}
		}
	}
	return len(visited) - 1
}

// depth is the longest dependency chain over reverse edges starting at rel.
func (g *Graph) depth(rel string) int {
	if _, ok := g.files[rel]; !ok {
		return 0
	}
	return g.depthRecursive(rel, map[string]bool{})
}

func (g *Graph) depthRecursive(rel string, visited map[string]bool) int {
	if visited[rel] {
		return 0
	}
	visited[rel] = true
	info, ok := g.files[rel]
	if !ok {
		return 0
	}

	maxDepth := 0
	for _, importer := range info.ImportedBy {
		branch := map[string]bool{}
		for k := range visited {
			branch[k] = true
		}
		d := 1 + g.depthRecursive(importer, branch)
		if d > maxDepth {
			maxDepth = d
		}
	}
	return maxDepth
}

// Info returns the dependency record for rel, if present.
func (g *Graph) Info(rel string) (*Info, bool) {
	info, ok := g.files[rel]
	return info, ok
}

// HighImpact returns every file whose blast radius is at least minBlastRadius,
// sorted descending by blast radius.
func (g *Graph) HighImpact(minBlastRadius int) []*Info {
	var out []*Info
	for _, info := range g.files {
		if info.BlastRadius >= minBlastRadius {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BlastRadius > out[j].BlastRadius })
	return out
}
