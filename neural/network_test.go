package neural

import (
	"math"
	"math/rand"
	"testing"
)

func TestNewNetworkShape(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	tests := []struct {
		name   string
		layers []int
		memory bool
		cols0  int
	}{
		{"plain", []int{14, 24, 20, 8}, false, 14},
		{"memory", []int{14, 24, 20, 8}, true, 22},
		{"single transition", []int{3, 2}, false, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			nn := NewNetwork(rng, tc.layers, tc.memory)
			if len(nn.weights) != len(tc.layers)-1 {
				t.Fatalf("got %d weight matrices, want %d", len(nn.weights), len(tc.layers)-1)
			}
			rows, cols := nn.weights[0].Dims()
			if rows != tc.layers[1] || cols != tc.cols0 {
				t.Errorf("first matrix is %dx%d, want %dx%d", rows, cols, tc.layers[1], tc.cols0)
			}
			if nn.InputSize() != tc.layers[0] || nn.OutputSize() != tc.layers[len(tc.layers)-1] {
				t.Errorf("sizes = %d/%d", nn.InputSize(), nn.OutputSize())
			}
		})
	}
}

func TestFeedforwardRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	nn := NewNetwork(rng, []int{6, 5, 4}, false)

	for trial := 0; trial < 50; trial++ {
		in := make([]float64, 6)
		for i := range in {
			in[i] = rng.Float64()*4 - 2
		}
		out := nn.Feedforward(in)
		if len(out) != 4 {
			t.Fatalf("output length = %d, want 4", len(out))
		}
		for i, v := range out {
			if v <= 0 || v >= 1 || math.IsNaN(v) {
				t.Errorf("output[%d] = %v, want in (0,1)", i, v)
			}
		}
	}
}

func TestFeedforwardDeterministic(t *testing.T) {
	nn := NewNetwork(rand.New(rand.NewSource(7)), []int{4, 3, 2}, false)
	in := []float64{0.1, 0.2, 0.3, 0.4}
	a := nn.Feedforward(in)
	b := nn.Feedforward(in)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("output[%d] changed between calls: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestMemoryChangesOutput(t *testing.T) {
	nn := NewNetwork(rand.New(rand.NewSource(3)), []int{4, 6, 3}, true)
	in := []float64{0.5, 0.5, 0.5, 0.5}

	first := nn.Feedforward(in)
	prev := nn.Previous()
	for i := range first {
		if prev[i] != first[i] {
			t.Fatalf("cache[%d] = %v, want %v", i, prev[i], first[i])
		}
	}

	second := nn.Feedforward(in)
	same := true
	for i := range first {
		if first[i] != second[i] {
			same = false
		}
	}
	if same {
		t.Error("memory network gave identical outputs for identical inputs; cache not used")
	}

	nn.Reset()
	for _, v := range nn.Previous() {
		if v != 0 {
			t.Errorf("Reset left %v in cache", v)
		}
	}
}

func TestFeedforwardWrongSizePanics(t *testing.T) {
	nn := NewNetwork(rand.New(rand.NewSource(1)), []int{3, 2}, false)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for wrong input size")
		}
	}()
	nn.Feedforward([]float64{1, 2})
}

func TestCost(t *testing.T) {
	got := Cost([]float64{1, 0, 0.5}, []float64{0, 0, 1})
	if math.Abs(got-1.25) > 1e-12 {
		t.Errorf("Cost = %v, want 1.25", got)
	}
	if Cost([]float64{0.3}, []float64{0.3}) != 0 {
		t.Error("Cost of identical vectors should be 0")
	}
}

func TestTrainStepReducesCost(t *testing.T) {
	for _, memory := range []bool{false, true} {
		nn := NewNetwork(rand.New(rand.NewSource(11)), []int{4, 8, 3}, memory)
		in := []float64{0.9, 0.1, 0.4, 0.7}
		desired := []float64{1, 0, 0}

		before := Cost(nn.Clone().Feedforward(in), desired)
		for i := 0; i < 200; i++ {
			nn.TrainStep(in, desired, 0.5)
		}
		after := Cost(nn.Clone().Feedforward(in), desired)

		t.Logf("memory=%v cost %.4f -> %.4f", memory, before, after)
		if after >= before {
			t.Errorf("memory=%v: cost did not decrease (%v -> %v)", memory, before, after)
		}
	}
}

func TestTrainStepKeepsCache(t *testing.T) {
	nn := NewNetwork(rand.New(rand.NewSource(5)), []int{2, 2}, true)
	nn.Feedforward([]float64{1, 1})
	before := nn.Previous()
	nn.TrainStep([]float64{1, 1}, []float64{0, 1}, 0.1)
	after := nn.Previous()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("TrainStep changed cache[%d]: %v -> %v", i, before[i], after[i])
		}
	}
}

func TestTrainStepUsesFeedforwardPass(t *testing.T) {
	nn := NewNetwork(rand.New(rand.NewSource(13)), []int{4, 5, 3}, true)
	in := []float64{0.3, 0.8, 0.1, 0.6}

	// Warm the cache so consecutive passes read different memory.
	nn.Feedforward(in)
	nn.Feedforward(in)
	out := nn.Feedforward(in)

	acts := nn.forward(in, nn.fed)
	trained := acts[len(acts)-1].RawVector().Data
	for i := range out {
		if trained[i] != out[i] {
			t.Errorf("trained pass output[%d] = %v, Feedforward gave %v", i, trained[i], out[i])
		}
	}

	// One step with a tiny rate must move the Feedforward output toward the target.
	desired := []float64{1, 0, 1}
	before := Cost(out, desired)
	nn.TrainStep(in, desired, 0.05)
	again := nn.forward(in, nn.fed)
	if got := Cost(again[len(again)-1].RawVector().Data, desired); got >= before {
		t.Errorf("cost of the trained pass did not decrease: %v -> %v", before, got)
	}
}

func TestCloneIndependent(t *testing.T) {
	nn := NewNetwork(rand.New(rand.NewSource(9)), []int{3, 4, 2}, true)
	in := []float64{0.2, 0.4, 0.6}
	c := nn.Clone()

	want := c.Clone().Feedforward(in)
	nn.TrainStep(in, []float64{0, 0}, 1)
	nn.Feedforward(in)

	got := c.Feedforward(in)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("clone affected by original: output[%d] %v vs %v", i, got[i], want[i])
		}
	}
}

func TestWeightsRoundTrip(t *testing.T) {
	nn := NewNetwork(rand.New(rand.NewSource(13)), []int{5, 4, 3}, true)
	restored, err := FromWeights(nn.MarshalWeights())
	if err != nil {
		t.Fatalf("FromWeights: %v", err)
	}

	in := []float64{0.1, 0.9, 0.3, 0.5, 0.7}
	a := nn.Clone()
	a.Reset()
	want := a.Feedforward(in)
	got := restored.Feedforward(in)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("output[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFromWeightsRejectsBadShapes(t *testing.T) {
	good := NewNetwork(rand.New(rand.NewSource(1)), []int{2, 3, 1}, false).MarshalWeights()

	tests := []struct {
		name   string
		mutate func(w *Weights)
	}{
		{"too few layers", func(w *Weights) { w.Layers = w.Layers[:1] }},
		{"missing matrix", func(w *Weights) { w.W = w.W[:1] }},
		{"short weights", func(w *Weights) { w.W[0] = w.W[0][:2] }},
		{"short biases", func(w *Weights) { w.B[1] = nil }},
		{"memory mismatch", func(w *Weights) { w.Memory = true }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := Weights{
				Layers: append([]int(nil), good.Layers...),
				Memory: good.Memory,
			}
			for i := range good.W {
				w.W = append(w.W, append([]float64(nil), good.W[i]...))
				w.B = append(w.B, append([]float64(nil), good.B[i]...))
			}
			tc.mutate(&w)
			if _, err := FromWeights(w); err == nil {
				t.Error("FromWeights succeeded, want error")
			}
		})
	}
}
