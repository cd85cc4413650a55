package network

import (
	G "gorgonia.org/gorgonia"
)

// activation is a pointwise nonlinearity applied to the output of a
// layer. The nil activation is the identity.
type activation func(x *G.Node) (*G.Node, error)

// rectify follows every hidden layer of an encoder
var rectify activation = G.Rectify

// apply adds a to the graph of x, returning x itself if a is nil
func (a activation) apply(x *G.Node) (*G.Node, error) {
	if a == nil {
		return x, nil
	}
	return a(x)
}
