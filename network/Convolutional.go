package network

import (
	"fmt"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/re3/initwfn"
)

// convLayer implements an unpadded 2D convolution with a square kernel
// over a batch of (channels, height, width) feature maps.
type convLayer struct {
	filter *tensor.Dense // (out, in, kernel, kernel)
	bias   *tensor.Dense // (1, out, 1, 1)
	kernel int
	stride int
	act    activation
}

// newConvLayer returns a new convolutional layer mapping in channels
// to out channels, drawing its parameters from init using src
func newConvLayer(in, out, kernel, stride int, act activation,
	init *initwfn.InitWFn, src rand.Source) *convLayer {
	fanIn := in * kernel * kernel
	fanOut := out * kernel * kernel

	return &convLayer{
		filter: init.Init(src, fanIn, fanOut, out, in, kernel, kernel),
		bias:   init.Init(src, fanIn, fanOut, 1, out, 1, 1),
		kernel: kernel,
		stride: stride,
		act:    act,
	}
}

// outputSize returns the spatial size of the layer output for an
// input of spatial size size, or 0 if the kernel does not fit
func (c *convLayer) outputSize(size int) int {
	if size < c.kernel {
		return 0
	}
	return (size-c.kernel)/c.stride + 1
}

// fwd adds the forward pass of the convLayer to the computational graph
func (c *convLayer) fwd(g *G.ExprGraph, x *G.Node, name string) (*G.Node,
	error) {
	filter := G.NewTensor(g, tensor.Float64, 4,
		G.WithShape(c.filter.Shape()...),
		G.WithName(name+"_W"),
		G.WithValue(c.filter),
	)
	bias := G.NewTensor(g, tensor.Float64, 4,
		G.WithShape(c.bias.Shape()...),
		G.WithName(name+"_b"),
		G.WithValue(c.bias),
	)

	x, err := G.Conv2d(
		x,
		filter,
		tensor.Shape{c.kernel, c.kernel},
		[]int{0, 0},
		[]int{c.stride, c.stride},
		[]int{1, 1},
	)
	if err != nil {
		return nil, fmt.Errorf("fwd: could not convolve: %v", err)
	}

	// Broadcast the bias along the batch and spatial dimensions
	x, err = G.BroadcastAdd(x, bias, nil, []byte{0, 2, 3})
	if err != nil {
		return nil, fmt.Errorf("fwd: could not add bias: %v", err)
	}

	return c.act.apply(x)
}

// Params returns the filter and bias of the layer
func (c *convLayer) Params() []*tensor.Dense {
	return []*tensor.Dense{c.filter, c.bias}
}
