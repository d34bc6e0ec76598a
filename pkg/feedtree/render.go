package feedtree

import (
	"fmt"
	"io"
	"strings"
)

// WriteText writes tree as indented lines, one node per line.
//
//	root (#1)
//	├── child (#2)
//	│   └── grandchild (#4)
//	└── child (#3)
func WriteText(w io.Writer, tree *TreeNode) error {
	if tree == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%s (#%d)\n", tree.Name, tree.Id); err != nil {
		return err
	}
	return writeTextChildren(w, tree, "")
}

func writeTextChildren(w io.Writer, n *TreeNode, indent string) error {
	for i, c := range n.Children {
		branch, next := "├── ", "│   "
		if i == len(n.Children)-1 {
			branch, next = "└── ", "    "
		}
		if _, err := fmt.Fprintf(w, "%s%s%s (#%d)\n", indent, branch, c.Name, c.Id); err != nil {
			return err
		}
		if err := writeTextChildren(w, c, indent+next); err != nil {
			return err
		}
	}
	return nil
}

// DotStyle returns extra graphviz attributes for a node, like `color="red"`.
type DotStyle func(*TreeNode) string

// WriteDot writes tree in graphviz dot format.
func WriteDot(w io.Writer, tree *TreeNode, style DotStyle) error {
	_, err := w.Write([]byte(`digraph G {
	node [shape=record fontsize=10]
	edge [fontsize=10]

`))
	if err != nil {
		return err
	}

	var werr error
	tree.Walk(func(_ int, n *TreeNode) bool {
		attrs := []string{fmt.Sprintf("label=\"%s\"", dotEscape(n.Name))}
		if style != nil {
			if s := style(n); s != "" {
				attrs = append(attrs, s)
			}
		}
		_, werr = fmt.Fprintf(w, "\t\"n%d\"[%s];\n", n.Id, strings.Join(attrs, " "))
		return werr == nil
	})
	if werr != nil {
		return werr
	}

	if _, err := w.Write([]byte("\n")); err != nil {
		return err
	}

	tree.Walk(func(_ int, n *TreeNode) bool {
		for _, c := range n.Children {
			if _, werr = fmt.Fprintf(w, "\t\"n%d\" -> \"n%d\";\n", n.Id, c.Id); werr != nil {
				return false
			}
		}
		return true
	})
	if werr != nil {
		return werr
	}

	_, err = w.Write([]byte("}\n"))
	return err
}

func dotEscape(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		`{`, `\{`,
		`}`, `\}`,
		`|`, `\|`,
		`<`, `\<`,
		`>`, `\>`,
	)
	return r.Replace(s)
}
