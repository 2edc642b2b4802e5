package output

import (
	"path/filepath"
	"sort"
	"strings"
)

// Column where per-file descriptions start.
const descriptionColumn = 44

// fileNode is one entry in a rendered file tree.
type fileNode struct {
	name     string
	desc     string
	dir      bool
	children map[string]*fileNode
}

func (n *fileNode) child(name string, dir bool) *fileNode {
	if c, ok := n.children[name]; ok {
		return c
	}
	c := &fileNode{name: name, dir: dir, children: map[string]*fileNode{}}
	n.children[name] = c
	return c
}

// ordered returns children sorted directories first, then by name.
func (n *fileNode) ordered() []*fileNode {
	out := make([]*fileNode, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].dir != out[j].dir {
			return out[i].dir
		}
		return out[i].name < out[j].name
	})
	return out
}

// RenderFileTree renders a bundle's files as a box-drawing tree with
// descriptions aligned in a right-hand column. files maps relative paths
// to descriptions; rootName is printed as the tree root.
func RenderFileTree(rootName string, files map[string]string) string {
	if len(files) == 0 {
		return ""
	}

	root := &fileNode{name: rootName, dir: true, children: map[string]*fileNode{}}
	for path, desc := range files {
		parts := strings.Split(filepath.ToSlash(path), "/")
		node := root
		for i, part := range parts {
			node = node.child(part, i < len(parts)-1)
		}
		node.desc = desc
	}

	styles := DefaultStyles()
	var sb strings.Builder
	sb.WriteString(styles.Bold.Render(rootName + "/"))
	sb.WriteByte('\n')
	writeBranch(&sb, styles, root, "")
	return sb.String()
}

func writeBranch(sb *strings.Builder, styles *Styles, node *fileNode, prefix string) {
	children := node.ordered()
	for i, c := range children {
		connector, extension := "├── ", "│   "
		if i == len(children)-1 {
			connector, extension = "└── ", "    "
		}

		name := c.name
		if c.dir {
			name += "/"
		}
		line := prefix + connector + name
		if c.desc != "" {
			pad := descriptionColumn - len(line)
			if pad < 2 {
				pad = 2
			}
			line += strings.Repeat(" ", pad) + styles.Muted.Render(c.desc)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')

		writeBranch(sb, styles, c, prefix+extension)
	}
}
