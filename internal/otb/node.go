// Package otb reads the escaped, framed node tree used by items.otb and
// related binary containers.
//
// A file is a 4-byte identifier followed by one root node. Each node is
// NodeStart, a type byte, property bytes, zero or more child nodes, NodeEnd.
// Any of the three control bytes appearing inside node data is preceded by
// NodeEscape.
package otb

import (
	"errors"
	"fmt"
	"os"

	"github.com/l1jgo/itemdb/internal/binfile"
)

const (
	NodeEscape byte = 0xFD
	NodeStart  byte = 0xFE
	NodeEnd    byte = 0xFF
)

var (
	ErrBadIdentifier = errors.New("unexpected file identifier")
	ErrNoRootNode    = errors.New("no root node")
)

// wildcard is accepted in place of any identifier.
var wildcard = [4]byte{}

// Node is one framed node. The embedded Reader reads the node's own
// unescaped bytes, starting with the type byte.
type Node struct {
	*binfile.Reader

	data     []byte
	children []*Node
	next     *Node
}

// Type returns the first byte of the node without consuming it.
func (n *Node) Type() (byte, bool) {
	if len(n.data) == 0 {
		return 0, false
	}
	return n.data[0], true
}

// Len returns the size of the node's unescaped byte window.
func (n *Node) Len() int {
	return len(n.data)
}

// Child returns the first child node, or nil.
func (n *Node) Child() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// Advance returns the next sibling, or nil at the end of the sibling list.
func (n *Node) Advance() *Node {
	return n.next
}

// ChildCount returns the number of complete children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// File is a parsed node tree.
type File struct {
	identifier [4]byte
	root       *Node
	truncated  bool
}

// Open reads the whole file at path and parses it. accepted lists the
// identifiers allowed besides the all-zero wildcard; empty accepts any.
func Open(path string, accepted ...string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(raw, accepted...)
}

// Root returns the root node.
func (f *File) Root() *Node {
	return f.root
}

// Identifier returns the 4-byte file identifier.
func (f *File) Identifier() string {
	return string(f.identifier[:])
}

// Truncated reports whether framing broke off before the root closed.
// Incomplete nodes are dropped, so iteration ends at the last complete sibling.
func (f *File) Truncated() bool {
	return f.truncated
}

// Parse builds the node tree from an in-memory file image.
func Parse(raw []byte, accepted ...string) (*File, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("%w: file is %d bytes", ErrBadIdentifier, len(raw))
	}
	f := &File{}
	copy(f.identifier[:], raw[:4])
	if !identifierAccepted(f.identifier, accepted) {
		return nil, fmt.Errorf("%w: %q", ErrBadIdentifier, raw[:4])
	}

	if len(raw) < 5 || raw[4] != NodeStart {
		return nil, ErrNoRootNode
	}

	var (
		stack []*Node
		cur   *Node
	)
	i := 4
scan:
	for ; i < len(raw); i++ {
		switch b := raw[i]; b {
		case NodeStart:
			n := &Node{}
			if cur == nil {
				if f.root != nil {
					break scan // a second top-level node is trailing garbage
				}
				f.root = n
			} else {
				if k := len(cur.children); k > 0 {
					cur.children[k-1].next = n
				}
				cur.children = append(cur.children, n)
				stack = append(stack, cur)
			}
			cur = n
		case NodeEnd:
			if cur == nil {
				break scan
			}
			cur.Reader = binfile.NewReader(cur.data)
			if len(stack) == 0 {
				cur = nil
				break scan
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		case NodeEscape:
			if cur == nil || i+1 >= len(raw) {
				break scan
			}
			i++
			cur.data = append(cur.data, raw[i])
		default:
			if cur == nil {
				break scan
			}
			cur.data = append(cur.data, b)
		}
	}

	if cur != nil {
		f.truncated = true
		f.dropOpen(append(stack, cur))
	}
	return f, nil
}

// dropOpen removes the unterminated chain open[1:] from their parents and
// gives the root a reader over whatever it collected.
func (f *File) dropOpen(open []*Node) {
	for k := len(open) - 1; k >= 1; k-- {
		parent := open[k-1]
		parent.children = parent.children[:len(parent.children)-1]
		if n := len(parent.children); n > 0 {
			parent.children[n-1].next = nil
		}
	}
	if f.root.Reader == nil {
		f.root.Reader = binfile.NewReader(f.root.data)
	}
}

func identifierAccepted(id [4]byte, accepted []string) bool {
	if id == wildcard || len(accepted) == 0 {
		return true
	}
	for _, a := range accepted {
		if string(id[:]) == a {
			return true
		}
	}
	return false
}
