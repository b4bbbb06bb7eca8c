package core

import "github.com/truffle-sql/truffle/pkg/token"

// Node is the base interface for all AST nodes.
type Node interface {
	// Pos returns the position of the first character of the node.
	Pos() token.Position
	// End returns the position of the character immediately after the node.
	End() token.Position
}

// Expr is a marker interface for expression nodes.
type Expr interface {
	Node
	exprNode() // Marker method to distinguish expressions
}

// Stmt is a marker interface for statement nodes.
type Stmt interface {
	Node
	stmtNode() // Marker method to distinguish statements
}

// NodeInfo carries the source span of a node. It is embedded by every
// node type and provides the Node methods.
type NodeInfo struct {
	Span token.Span
}

// Pos implements Node.
func (n *NodeInfo) Pos() token.Position { return n.Span.Start }

// End implements Node.
func (n *NodeInfo) End() token.Position { return n.Span.End }

// GetSpan returns the node's source span.
func (n *NodeInfo) GetSpan() token.Span { return n.Span }

// SpanOf returns the span covered by a node. A nil node has an empty span.
func SpanOf(n Node) token.Span {
	if n == nil {
		return token.Span{}
	}
	return token.Span{Start: n.Pos(), End: n.End()}
}

// Ident is a name with its source location, used wherever diagnostics
// need to point at a bare identifier (insert columns, SET targets, USING lists).
type Ident struct {
	NodeInfo
	Name string
}
