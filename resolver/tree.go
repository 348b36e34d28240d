package resolver

import "valheim-mod-manager/mods"

// DefaultMaxTreeDepth caps dependency tree recursion.
const DefaultMaxTreeDepth = 5

// TreeNode is one node of a dependency tree built for visualization.
type TreeNode struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Version  string      `json:"version,omitempty"`
	Children []*TreeNode `json:"children"`
}

// DependencyTree builds a nested dependency structure rooted at modID.
//
// The visited set is copied on descent, so a diamond dependency appears
// once per branch while a cycle that slipped past resolution still cannot
// recurse forever. Depth is hard-capped at maxDepth.
func DependencyTree(modID string, set []*mods.Mod, maxDepth int) *TreeNode {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxTreeDepth
	}
	index := indexByID(set)
	if _, ok := index[modID]; !ok {
		return nil
	}
	return buildTree(modID, index, 0, maxDepth, map[string]bool{})
}

func buildTree(currentID string, index map[string]*mods.Mod, depth, maxDepth int, visited map[string]bool) *TreeNode {
	if depth >= maxDepth || visited[currentID] {
		return &TreeNode{ID: currentID, Name: currentID, Children: []*TreeNode{}}
	}

	mod, ok := index[currentID]
	if !ok {
		return &TreeNode{ID: currentID, Name: currentID, Children: []*TreeNode{}}
	}

	visited[currentID] = true

	node := &TreeNode{
		ID:       mod.ID,
		Name:     mod.Name,
		Version:  mod.Version,
		Children: make([]*TreeNode, 0, len(mod.Dependencies)),
	}
	for _, dep := range mod.Dependencies {
		branchVisited := make(map[string]bool, len(visited))
		for id := range visited {
			branchVisited[id] = true
		}
		node.Children = append(node.Children, buildTree(dep.ModID, index, depth+1, maxDepth, branchVisited))
	}

	return node
}
