package network

import (
	"fmt"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/re3/initwfn"
)

// Layer is a single frozen stage of an encoder. A Layer owns its
// parameter values and can add itself to any number of computational
// graphs, so that graphs of different batch sizes share one set of
// weights.
type Layer interface {
	// fwd adds the forward pass of the layer on x to the graph g. The
	// name is used as a prefix for any nodes created.
	fwd(g *G.ExprGraph, x *G.Node, name string) (*G.Node, error)

	// Params returns the parameter values of the layer
	Params() []*tensor.Dense
}

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *tensor.Dense // (in, out)
	bias    *tensor.Dense // (1, out)
	act     activation
}

// newFCLayer returns a new fully connected layer with in inputs and
// out outputs, drawing its parameters from init using src
func newFCLayer(in, out int, act activation, init *initwfn.InitWFn,
	src rand.Source) *fcLayer {
	return &fcLayer{
		weights: init.Init(src, in, out, in, out),
		bias:    init.Init(src, in, out, 1, out),
		act:     act,
	}
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(g *G.ExprGraph, x *G.Node, name string) (*G.Node,
	error) {
	weights := G.NewMatrix(g, tensor.Float64,
		G.WithShape(f.weights.Shape()...),
		G.WithName(name+"_W"),
		G.WithValue(f.weights),
	)
	bias := G.NewMatrix(g, tensor.Float64,
		G.WithShape(f.bias.Shape()...),
		G.WithName(name+"_b"),
		G.WithValue(f.bias),
	)

	x, err := G.Mul(x, weights)
	if err != nil {
		return nil, fmt.Errorf("fwd: could not multiply weights: %v", err)
	}

	// Broadcast the bias weights to all samples along the batch
	// dimension
	x, err = G.BroadcastAdd(x, bias, nil, []byte{0})
	if err != nil {
		return nil, fmt.Errorf("fwd: could not add bias: %v", err)
	}

	return f.act.apply(x)
}

// Params returns the weights and bias of the layer
func (f *fcLayer) Params() []*tensor.Dense {
	return []*tensor.Dense{f.weights, f.bias}
}

// flattenLayer reshapes a batch of feature maps into a batch of
// feature vectors. It has no parameters.
type flattenLayer struct{}

// fwd adds the reshape to the computational graph
func (flattenLayer) fwd(_ *G.ExprGraph, x *G.Node, _ string) (*G.Node,
	error) {
	shape := x.Shape()
	return G.Reshape(x, tensor.Shape{shape[0], shape[1:].TotalSize()})
}

// Params returns nil, a flattenLayer has no parameters
func (flattenLayer) Params() []*tensor.Dense {
	return nil
}
