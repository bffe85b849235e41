package neat

import "math"

// Sigmoid is the logistic function 1 / (1 + e^-x).
// It is applied once per output neuron to its raw weighted sum; hidden neurons
// pass their raw sums upstream unsquashed.
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
