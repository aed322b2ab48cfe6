package printer

import "github.com/slok/taskspipeline/internal/pipeline"

// Printer knows how to print pipeline information in different formats.
type Printer interface {
	PrintTasks(entries []pipeline.EntrySnapshot) error
	PrintMessage(msg string) error
}

// TreeNode is the shape of a task tree index entry.
type TreeNode struct {
	Depth     int
	LastChild bool
}

// TreePrefixes returns the tree drawing prefix of each node, nodes must be
// in depth-first order.
func TreePrefixes(nodes []TreeNode) []string {
	prefixes := make([]string, len(nodes))

	// childPrefix[d] is the prefix inherited by the children of the last node
	// seen at depth d.
	childPrefix := []string{}
	for i, n := range nodes {
		if n.Depth == 0 {
			childPrefix = append(childPrefix[:0], "")
			continue
		}

		parent := childPrefix[n.Depth-1]
		glyph, cont := "├", "│"
		if n.LastChild {
			glyph, cont = "└", " "
		}
		prefixes[i] = parent + glyph

		childPrefix = append(childPrefix[:n.Depth], parent+cont)
	}

	return prefixes
}

func snapshotNodes(entries []pipeline.EntrySnapshot) []TreeNode {
	nodes := make([]TreeNode, 0, len(entries))
	for _, e := range entries {
		nodes = append(nodes, TreeNode{Depth: e.Depth, LastChild: e.LastChild})
	}
	return nodes
}
