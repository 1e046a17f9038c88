// Package neural provides the feedforward decision networks driving creatures.
package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Network is a fully connected feedforward network with a sigmoid after
// every layer.
//
// With Memory enabled the previous output is appended to every input, so the
// first weight matrix has Layers[0]+Layers[last] columns.
type Network struct {
	Layers []int
	Memory bool

	weights []*mat.Dense    // weights[i] maps layer i to layer i+1
	biases  []*mat.VecDense // biases[i] belongs to layer i+1
	prev    []float64       // last output, memory only
	fed     []float64       // memory read by the last Feedforward
}

// NewNetwork creates a network with the given layer sizes.
// Weights and biases are drawn from a standard normal distribution.
func NewNetwork(rng *rand.Rand, layers []int, memory bool) *Network {
	if len(layers) < 2 {
		panic(fmt.Sprintf("neural: need at least 2 layers, got %d", len(layers)))
	}
	nn := &Network{
		Layers: append([]int(nil), layers...),
		Memory: memory,
	}
	for i := 0; i < len(layers)-1; i++ {
		rows, cols := layers[i+1], nn.fanIn(i)
		w := make([]float64, rows*cols)
		for j := range w {
			w[j] = rng.NormFloat64()
		}
		b := make([]float64, rows)
		for j := range b {
			b[j] = rng.NormFloat64()
		}
		nn.weights = append(nn.weights, mat.NewDense(rows, cols, w))
		nn.biases = append(nn.biases, mat.NewVecDense(rows, b))
	}
	if memory {
		nn.prev = make([]float64, nn.OutputSize())
		nn.fed = make([]float64, nn.OutputSize())
	}
	return nn
}

// fanIn returns the column count of weight matrix i.
func (nn *Network) fanIn(i int) int {
	if i == 0 && nn.Memory {
		return nn.Layers[0] + nn.Layers[len(nn.Layers)-1]
	}
	return nn.Layers[i]
}

// InputSize returns the number of external inputs.
func (nn *Network) InputSize() int { return nn.Layers[0] }

// OutputSize returns the number of outputs.
func (nn *Network) OutputSize() int { return nn.Layers[len(nn.Layers)-1] }

// Previous returns a copy of the cached previous output, or nil without memory.
func (nn *Network) Previous() []float64 {
	if !nn.Memory {
		return nil
	}
	return append([]float64(nil), nn.prev...)
}

// Reset clears the memory cache.
func (nn *Network) Reset() {
	clear(nn.prev)
	clear(nn.fed)
}

// input builds the first layer activation, appending mem if memory is enabled.
func (nn *Network) input(in, mem []float64) *mat.VecDense {
	if len(in) != nn.InputSize() {
		panic(fmt.Sprintf("neural: got %d inputs, want %d", len(in), nn.InputSize()))
	}
	x := make([]float64, 0, nn.fanIn(0))
	x = append(x, in...)
	if nn.Memory {
		x = append(x, mem...)
	}
	return mat.NewVecDense(len(x), x)
}

// forward returns the activation of every layer, input included.
func (nn *Network) forward(in, mem []float64) []*mat.VecDense {
	acts := make([]*mat.VecDense, 0, len(nn.Layers))
	a := nn.input(in, mem)
	acts = append(acts, a)
	for i, w := range nn.weights {
		z := mat.NewVecDense(nn.Layers[i+1], nil)
		z.MulVec(w, a)
		z.AddVec(z, nn.biases[i])
		sigmoidVec(z)
		acts = append(acts, z)
		a = z
	}
	return acts
}

// Feedforward computes the network output for in.
// With memory enabled the output replaces the cached previous output.
func (nn *Network) Feedforward(in []float64) []float64 {
	copy(nn.fed, nn.prev)
	acts := nn.forward(in, nn.fed)
	out := append([]float64(nil), acts[len(acts)-1].RawVector().Data...)
	if nn.Memory {
		copy(nn.prev, out)
	}
	return out
}

// Cost returns the sum of squared errors between output and desired.
func Cost(output, desired []float64) float64 {
	d := floats.Distance(output, desired, 2)
	return d * d
}

// TrainStep runs one step of gradient descent toward desired with learning
// rate eta. With memory enabled it differentiates the same pass as the last
// Feedforward, using the memory that call read. The cache is not updated.
func (nn *Network) TrainStep(in, desired []float64, eta float64) {
	if len(desired) != nn.OutputSize() {
		panic(fmt.Sprintf("neural: got %d targets, want %d", len(desired), nn.OutputSize()))
	}
	acts := nn.forward(in, nn.fed)

	// Output error: (a - y) * a(1 - a)
	last := acts[len(acts)-1]
	delta := mat.NewVecDense(last.Len(), nil)
	delta.SubVec(last, mat.NewVecDense(len(desired), append([]float64(nil), desired...)))
	sigmoidPrime(delta, last)

	for i := len(nn.weights) - 1; i >= 0; i-- {
		w := nn.weights[i]
		prev := acts[i]

		// Propagate before the weights change.
		var back *mat.VecDense
		if i > 0 {
			back = mat.NewVecDense(prev.Len(), nil)
			back.MulVec(w.T(), delta)
			sigmoidPrime(back, prev)
		}

		rows, cols := w.Dims()
		grad := mat.NewDense(rows, cols, nil)
		grad.Outer(eta, delta, prev)
		w.Sub(w, grad)
		nn.biases[i].AddScaledVec(nn.biases[i], -eta, delta)

		delta = back
	}
}

// Clone returns a deep copy of the network, memory included.
func (nn *Network) Clone() *Network {
	c := &Network{
		Layers: append([]int(nil), nn.Layers...),
		Memory: nn.Memory,
		prev:   append([]float64(nil), nn.prev...),
		fed:    append([]float64(nil), nn.fed...),
	}
	for i := range nn.weights {
		c.weights = append(c.weights, mat.DenseCopyOf(nn.weights[i]))
		c.biases = append(c.biases, mat.VecDenseCopyOf(nn.biases[i]))
	}
	return c
}

// Weights is the flattened, serializable form of a network.
// W[i] is row-major with Layers[i+1] rows.
type Weights struct {
	Layers []int       `json:"layers"`
	Memory bool        `json:"memory"`
	W      [][]float64 `json:"w"`
	B      [][]float64 `json:"b"`
}

// MarshalWeights flattens the network weights.
func (nn *Network) MarshalWeights() Weights {
	ws := Weights{
		Layers: append([]int(nil), nn.Layers...),
		Memory: nn.Memory,
	}
	for i, w := range nn.weights {
		ws.W = append(ws.W, append([]float64(nil), w.RawMatrix().Data...))
		ws.B = append(ws.B, append([]float64(nil), nn.biases[i].RawVector().Data...))
	}
	return ws
}

// FromWeights rebuilds a network from its flattened form.
// The memory cache starts cleared.
func FromWeights(ws Weights) (*Network, error) {
	if len(ws.Layers) < 2 {
		return nil, fmt.Errorf("need at least 2 layers, got %d", len(ws.Layers))
	}
	if len(ws.W) != len(ws.Layers)-1 || len(ws.B) != len(ws.Layers)-1 {
		return nil, fmt.Errorf("got %d weight and %d bias layers for %d layers", len(ws.W), len(ws.B), len(ws.Layers))
	}
	nn := &Network{
		Layers: append([]int(nil), ws.Layers...),
		Memory: ws.Memory,
	}
	for i := range ws.W {
		if ws.Layers[i] < 1 || ws.Layers[i+1] < 1 {
			return nil, fmt.Errorf("layer %d has non-positive size", i)
		}
		rows, cols := ws.Layers[i+1], nn.fanIn(i)
		if len(ws.W[i]) != rows*cols {
			return nil, fmt.Errorf("layer %d: got %d weights, want %d", i, len(ws.W[i]), rows*cols)
		}
		if len(ws.B[i]) != rows {
			return nil, fmt.Errorf("layer %d: got %d biases, want %d", i, len(ws.B[i]), rows)
		}
		nn.weights = append(nn.weights, mat.NewDense(rows, cols, append([]float64(nil), ws.W[i]...)))
		nn.biases = append(nn.biases, mat.NewVecDense(rows, append([]float64(nil), ws.B[i]...)))
	}
	if nn.Memory {
		nn.prev = make([]float64, nn.OutputSize())
		nn.fed = make([]float64, nn.OutputSize())
	}
	return nn, nil
}

// Sigmoid is the logistic function.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func sigmoidVec(v *mat.VecDense) {
	data := v.RawVector().Data
	for i, x := range data {
		data[i] = Sigmoid(x)
	}
}

// sigmoidPrime scales v in place by a(1-a) for the sigmoid activations a.
func sigmoidPrime(v, a *mat.VecDense) {
	vd, ad := v.RawVector().Data, a.RawVector().Data
	for i := range vd {
		vd[i] *= ad[i] * (1 - ad[i])
	}
}
