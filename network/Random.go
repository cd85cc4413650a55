package network

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/re3/initwfn"
)

// Hidden layer sizes of the fully connected encoder
const mlpHiddenSize = 64

// convSpec describes a single convolutional stage of the CNN encoder
type convSpec struct {
	channels, kernel, stride int
}

// Convolutional stages of the CNN encoder. An 84x84 input produces a
// 7x7 feature map after the final stage.
var cnnStages = []convSpec{
	{channels: 32, kernel: 8, stride: 4},
	{channels: 64, kernel: 4, stride: 2},
	{channels: 32, kernel: 3, stride: 1},
}

// NewEncoder returns a new frozen, randomly initialized Encoder for
// observations of shape obsShape. Rank 3 observations, shaped
// (channels, height, width), are embedded with a convolutional network.
// Rank 1 observations are embedded with a fully connected network. All
// other ranks are rejected with ErrUnsupportedObservationRank.
//
// Parameters are drawn from init using a source seeded with seed, so
// that two Encoders constructed with the same arguments are identical.
// The chunkSize argument limits the number of observations embedded
// in a single forward pass; chunkSize <= 0 embeds whole batches at
// once.
func NewEncoder(obsShape []int, embeddingSize, chunkSize int,
	init *initwfn.InitWFn, seed uint64) (Encoder, error) {
	if embeddingSize < 1 {
		return nil, errors.Wrapf(ErrInvalidEncoder, "newEncoder: embedding "+
			"size %d < 1", embeddingSize)
	}
	if init == nil {
		return nil, errors.Wrap(ErrInvalidEncoder, "newEncoder: nil "+
			"weight initializer")
	}
	for _, dim := range obsShape {
		if dim < 1 {
			return nil, errors.Wrapf(ErrInvalidEncoder, "newEncoder: "+
				"illegal observation shape %v", obsShape)
		}
	}

	src := rand.NewSource(seed)

	switch len(obsShape) {
	case 1:
		layers := newMLP(obsShape[0], embeddingSize, init, src)
		return newFrozenNet(MLP, obsShape, embeddingSize, chunkSize,
			layers), nil

	case 3:
		layers, err := newCNN(obsShape, embeddingSize, init, src)
		if err != nil {
			return nil, err
		}
		return newFrozenNet(CNN, obsShape, embeddingSize, chunkSize,
			layers), nil

	default:
		return nil, errors.Wrapf(ErrUnsupportedObservationRank,
			"newEncoder: observation shape %v has rank %d, expected 1 or 3",
			obsShape, len(obsShape))
	}
}

// newMLP returns the layers of the fully connected encoder:
//
//	features → 64 → ReLU → 64 → ReLU → embeddingSize
func newMLP(features, embeddingSize int, init *initwfn.InitWFn,
	src rand.Source) []Layer {
	return []Layer{
		newFCLayer(features, mlpHiddenSize, rectify, init, src),
		newFCLayer(mlpHiddenSize, mlpHiddenSize, rectify, init, src),
		newFCLayer(mlpHiddenSize, embeddingSize, nil, init, src),
	}
}

// newCNN returns the layers of the convolutional encoder. Each stage
// in cnnStages is followed by a ReLU, after which the feature maps are
// flattened and linearly projected to embeddingSize.
func newCNN(obsShape []int, embeddingSize int, init *initwfn.InitWFn,
	src rand.Source) ([]Layer, error) {
	channels, height, width := obsShape[0], obsShape[1], obsShape[2]

	layers := make([]Layer, 0, len(cnnStages)+2)
	for i, stage := range cnnStages {
		conv := newConvLayer(channels, stage.channels, stage.kernel,
			stage.stride, rectify, init, src)

		height, width = conv.outputSize(height), conv.outputSize(width)
		if height < 1 || width < 1 {
			return nil, errors.Wrapf(ErrInvalidEncoder, "newCNN: "+
				"observation shape %v too small for convolution %d",
				obsShape, i)
		}

		layers = append(layers, conv)
		channels = stage.channels
	}

	features := channels * height * width
	layers = append(layers, flattenLayer{})
	layers = append(layers, newFCLayer(features, embeddingSize, nil,
		init, src))

	return layers, nil
}
