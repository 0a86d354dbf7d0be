package tree

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra/doc"
)

// Node is a tree node.
type Node struct {
	Children []*Node
}

func (n *Node) Size() int {
	total := 1
	for _, c := range n.Children {
		total += c.Size()
	}
	return total
}

func Grid(rows [][]int) int {
	sum := 0
	for _, r := range rows {
		for i := 0; i < len(r); i++ {
			sum += r[i]
		}
	}
	fmt.Println(sum)
	_ = http.StatusOK
	_ = doc.GenManTree
	return sum
}
