package orgchart

import (
	"fmt"
	"io"
	"strings"
)

// Node is one user in a rendered forest. Level is 0 for roots.
type Node struct {
	User     User   `json:"user"`
	Level    int    `json:"level"`
	Children []Node `json:"children"`
}

// Roots returns the users without a parent, in list order.
func Roots(users []User) []User {
	var roots []User
	for _, u := range users {
		if u.IsRoot() {
			roots = append(roots, u)
		}
	}
	return roots
}

// Children returns the direct reports of id, in list order.
func Children(users []User, id string) []User {
	var children []User
	for _, u := range users {
		if u.ParentID != nil && *u.ParentID == id {
			children = append(children, u)
		}
	}
	return children
}

// childIndex maps parent id to the list positions of its children. Sibling
// order follows list order.
func childIndex(users []User) map[string][]int {
	index := make(map[string][]int, len(users))
	for i, u := range users {
		if u.ParentID != nil {
			index[*u.ParentID] = append(index[*u.ParentID], i)
		}
	}
	return index
}

// BuildForest nests the flat list under its roots using a child index
// rebuilt on every call.
func BuildForest(users []User) []Node {
	index := childIndex(users)
	visited := make(map[string]struct{}, len(users))

	var build func(u User, level int) Node
	build = func(u User, level int) Node {
		visited[u.ID] = struct{}{}
		node := Node{User: u, Level: level, Children: []Node{}}
		for _, i := range index[u.ID] {
			child := users[i]
			if _, seen := visited[child.ID]; seen {
				continue
			}
			node.Children = append(node.Children, build(child, level+1))
		}
		return node
	}

	forest := []Node{}
	for _, root := range Roots(users) {
		forest = append(forest, build(root, 0))
	}
	return forest
}

// RenderTree writes an indented outline of the forest, two spaces per level.
func RenderTree(w io.Writer, forest []Node) error {
	for _, node := range forest {
		if err := renderNode(w, node); err != nil {
			return err
		}
	}
	return nil
}

func renderNode(w io.Writer, node Node) error {
	line := fmt.Sprintf("%s- %s [%s]", strings.Repeat("  ", node.Level), node.User.DisplayName(), node.User.Permissions)
	if node.User.Email != "" {
		line += " <" + node.User.Email + ">"
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := renderNode(w, child); err != nil {
			return err
		}
	}
	return nil
}

// createsCycle reports whether placing userID under newParentID would make
// userID its own ancestor. The walk follows parent links upward with a
// visited set, so a corrupt chain ends the walk instead of looping.
func createsCycle(byID map[string]*User, userID, newParentID string) bool {
	visited := make(map[string]struct{}, len(byID))
	current := newParentID
	for {
		if current == userID {
			return true
		}
		if _, seen := visited[current]; seen {
			return true
		}
		visited[current] = struct{}{}

		u, ok := byID[current]
		if !ok || u.ParentID == nil {
			return false
		}
		current = *u.ParentID
	}
}
