// Package network implements frozen, randomly initialized encoders
// which map raw observations to fixed size embeddings. Encoders are
// built on Gorgonia computational graphs but expose no learnable
// nodes: their parameters are drawn once at construction and never
// change.
package network

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

var (
	// ErrUnsupportedObservationRank is returned when an encoder is
	// requested for observations that are neither rank 1 nor rank 3
	ErrUnsupportedObservationRank = errors.New("unsupported observation rank")

	// ErrInvalidEncoder is returned when an encoder cannot be built
	// from its configuration
	ErrInvalidEncoder = errors.New("invalid encoder configuration")

	// ErrShapeMismatch is returned when a batch of observations does
	// not match the observation shape of an encoder
	ErrShapeMismatch = errors.New("observation shape mismatch")

	// ErrUnsupportedDtype is returned for batches that are neither
	// Float64 nor Float32
	ErrUnsupportedDtype = errors.New("unsupported observation dtype")
)

// Variant is the architecture of an encoder
type Variant int

const (
	MLP Variant = iota // Fully connected, rank 1 observations
	CNN                // Convolutional, rank 3 observations
)

// String implements the fmt.Stringer interface
func (v Variant) String() string {
	switch v {
	case MLP:
		return "MLP"
	case CNN:
		return "CNN"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Encoder maps batches of observations to batches of embeddings using
// fixed parameters. The batch dimension is always the first dimension
// of both the input and the output.
//
// An Encoder is safe for concurrent use.
type Encoder interface {
	// Embed returns the (batch, EmbeddingSize()) embeddings of a
	// batch of observations shaped (batch,) + ObservationShape()
	Embed(obs *tensor.Dense) (*mat.Dense, error)

	ObservationShape() []int
	EmbeddingSize() int
	NumParams() int
	Variant() Variant
}

// maxGraphs is the number of compiled batch sizes kept by an encoder
const maxGraphs = 4

// frozenNet implements an Encoder as a sequence of frozen Layers.
// Graphs are compiled lazily, once per distinct batch size, and the
// maxGraphs most recently used are cached. All cached graphs share the
// same parameter values.
type frozenNet struct {
	variant       Variant
	obsShape      []int
	embeddingSize int
	layers        []Layer
	chunkSize     int

	mu     sync.Mutex
	graphs map[int]*batchGraph
	recent []int // batch sizes of graphs, least recently used first
}

// batchGraph is a compiled forward pass for a single batch size
type batchGraph struct {
	sync.Mutex
	g      *G.ExprGraph
	input  *G.Node
	outVal G.Value
	vm     G.VM
}

// newFrozenNet returns a new frozenNet. The chunkSize determines the
// maximum number of observations embedded in a single forward pass,
// with chunkSize <= 0 meaning no limit.
func newFrozenNet(variant Variant, obsShape []int, embeddingSize,
	chunkSize int, layers []Layer) *frozenNet {
	shape := make([]int, len(obsShape))
	copy(shape, obsShape)

	return &frozenNet{
		variant:       variant,
		obsShape:      shape,
		embeddingSize: embeddingSize,
		layers:        layers,
		chunkSize:     chunkSize,
		graphs:        make(map[int]*batchGraph, maxGraphs),
		recent:        make([]int, 0, maxGraphs),
	}
}

// Variant returns the architecture of the encoder
func (n *frozenNet) Variant() Variant {
	return n.variant
}

// ObservationShape returns the shape of a single observation
func (n *frozenNet) ObservationShape() []int {
	shape := make([]int, len(n.obsShape))
	copy(shape, n.obsShape)
	return shape
}

// EmbeddingSize returns the number of features in an embedding
func (n *frozenNet) EmbeddingSize() int {
	return n.embeddingSize
}

// NumParams returns the total number of scalar parameters
func (n *frozenNet) NumParams() int {
	total := 0
	for _, l := range n.layers {
		for _, p := range l.Params() {
			total += p.Shape().TotalSize()
		}
	}
	return total
}

// Embed returns the embeddings of a batch of observations
func (n *frozenNet) Embed(obs *tensor.Dense) (*mat.Dense, error) {
	if err := n.checkShape(obs.Shape()); err != nil {
		return nil, err
	}

	data, err := Float64Data(obs)
	if err != nil {
		return nil, err
	}

	batch := obs.Shape()[0]
	obsSize := tensor.Shape(n.obsShape).TotalSize()
	out := mat.NewDense(batch, n.embeddingSize, nil)
	outData := out.RawMatrix().Data

	chunk := n.chunkSize
	if chunk <= 0 || chunk > batch {
		chunk = batch
	}

	for start := 0; start < batch; start += chunk {
		end := start + chunk
		if end > batch {
			end = batch
		}

		graph, err := n.graph(end - start)
		if err != nil {
			return nil, err
		}

		inShape := append([]int{end - start}, n.obsShape...)
		in := tensor.New(
			tensor.WithShape(inShape...),
			tensor.WithBacking(data[start*obsSize:end*obsSize]),
		)
		if err := graph.run(in, outData[start*n.embeddingSize:end*n.embeddingSize]); err != nil {
			return nil, errors.Wrapf(err, "embed: could not embed "+
				"observations [%d, %d)", start, end)
		}
	}

	return out, nil
}

// checkShape ensures a batch shape is (batch,) + ObservationShape()
func (n *frozenNet) checkShape(shape tensor.Shape) error {
	if len(shape) != len(n.obsShape)+1 {
		return errors.Wrapf(ErrShapeMismatch, "embed: batch of rank %d "+
			"for observations of shape %v", len(shape), n.obsShape)
	}
	if shape[0] < 1 {
		return errors.Wrap(ErrShapeMismatch, "embed: empty batch")
	}
	for i, dim := range n.obsShape {
		if shape[i+1] != dim {
			return errors.Wrapf(ErrShapeMismatch, "embed: batch shape %v "+
				"incompatible with observation shape %v", shape, n.obsShape)
		}
	}
	return nil
}

// graph returns the compiled graph for a batch size, building it if
// needed. Building a graph when the cache is full evicts the least
// recently used one; callers still running an evicted graph are
// unaffected.
func (n *frozenNet) graph(batch int) (*batchGraph, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if graph, ok := n.graphs[batch]; ok {
		n.touch(batch)
		return graph, nil
	}

	graph, err := n.build(batch)
	if err != nil {
		return nil, err
	}

	if len(n.recent) >= maxGraphs {
		delete(n.graphs, n.recent[0])
		n.recent = append(n.recent[:0], n.recent[1:]...)
	}
	n.graphs[batch] = graph
	n.recent = append(n.recent, batch)
	return graph, nil
}

// touch marks the graph for a batch size as most recently used
func (n *frozenNet) touch(batch int) {
	for i, size := range n.recent {
		if size == batch {
			copy(n.recent[i:], n.recent[i+1:])
			n.recent[len(n.recent)-1] = batch
			return
		}
	}
}

// cachedGraphs returns the number of compiled graphs currently cached
func (n *frozenNet) cachedGraphs() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.graphs)
}

// build constructs and compiles the forward pass for a batch size
func (n *frozenNet) build(batch int) (*batchGraph, error) {
	g := G.NewGraph()

	inShape := append([]int{batch}, n.obsShape...)
	input := G.NewTensor(g, tensor.Float64, len(inShape),
		G.WithShape(inShape...),
		G.WithName("input"),
		G.WithInit(G.Zeroes()),
	)

	pred := input
	var err error
	for i, l := range n.layers {
		if pred, err = l.fwd(g, pred, fmt.Sprintf("l%d", i)); err != nil {
			msg := "build: could not compute forward pass of layer %v: %v"
			return nil, fmt.Errorf(msg, i, err)
		}
	}

	graph := &batchGraph{g: g, input: input}
	G.Read(pred, &graph.outVal)
	graph.vm = G.NewTapeMachine(g)

	return graph, nil
}

// run runs the forward pass on in, copying the embeddings into out
func (b *batchGraph) run(in *tensor.Dense, out []float64) error {
	b.Lock()
	defer b.Unlock()

	if err := G.Let(b.input, in); err != nil {
		return err
	}
	defer b.vm.Reset()

	if err := b.vm.RunAll(); err != nil {
		return err
	}

	pred := float64s(b.outVal.Data())
	if len(pred) != len(out) {
		return fmt.Errorf("run: unexpected output of size %v, expected %v",
			len(pred), len(out))
	}
	copy(out, pred)

	return nil
}

// Float64Data returns the contiguous float64 backing data of a tensor,
// converting Float32 tensors. Float64 tensors that are already
// contiguous are not copied.
func Float64Data(t *tensor.Dense) ([]float64, error) {
	if t.IsMaterializable() {
		materialized, ok := t.Materialize().(*tensor.Dense)
		if !ok {
			return nil, fmt.Errorf("float64Data: could not materialize view")
		}
		t = materialized
	}

	switch t.Dtype() {
	case tensor.Float64:
		return float64s(t.Data()), nil

	case tensor.Float32:
		var data []float32
		switch v := t.Data().(type) {
		case []float32:
			data = v
		case float32:
			data = []float32{v}
		}

		converted := make([]float64, len(data))
		for i, v := range data {
			converted[i] = float64(v)
		}
		return converted, nil

	default:
		return nil, errors.Wrapf(ErrUnsupportedDtype, "float64Data: %v",
			t.Dtype())
	}
}

// float64s returns the data of a Float64 tensor as a slice. Tensors of
// a single element may report their data as a scalar.
func float64s(data interface{}) []float64 {
	switch v := data.(type) {
	case []float64:
		return v
	case float64:
		return []float64{v}
	default:
		return nil
	}
}
