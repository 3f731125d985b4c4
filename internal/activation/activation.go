// Package activation implements the scalar activation functions used by the
// dense layers.
//
// Activations are a closed set of variants rather than an interface: each
// Func pairs a forward transform with its derivative, and a layer stores the
// Func by value.
package activation

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// Func identifies an activation function.
type Func uint8

// Supported activation functions.
const (
	// Identity passes values through unchanged.
	Identity Func = iota
	// ReLU is max(0, x).
	ReLU
	// LeakyReLU is x for x > 0 and 0.1x otherwise.
	LeakyReLU
	// Sigmoid is 1 / (1 + e^-x).
	Sigmoid
)

// leakySlope is the negative-side slope of LeakyReLU.
const leakySlope = 0.1

// Forward applies the activation to x.
func (f Func) Forward(x float32) float32 {
	switch f {
	case Identity:
		return x
	case ReLU:
		if x > 0 {
			return x
		}
		return 0
	case LeakyReLU:
		if x > 0 {
			return x
		}
		return leakySlope * x
	case Sigmoid:
		return 1 / (1 + math32.Exp(-x))
	default:
		panic(fmt.Sprintf("activation: unknown function %d", f))
	}
}

// Backward returns the derivative of the activation.
//
// The argument is the activated value y = Forward(x), not the raw weighted
// sum: Sigmoid uses y*(1-y), and ReLU/LeakyReLU test the sign of y, which
// matches the sign of x. A future activation that changes sign would break
// this contract.
func (f Func) Backward(y float32) float32 {
	switch f {
	case Identity:
		return 1
	case ReLU:
		if y > 0 {
			return 1
		}
		return 0
	case LeakyReLU:
		if y > 0 {
			return 1
		}
		return leakySlope
	case Sigmoid:
		return y * (1 - y)
	default:
		panic(fmt.Sprintf("activation: unknown function %d", f))
	}
}

// String returns the canonical name of f.
func (f Func) String() string {
	switch f {
	case Identity:
		return "identity"
	case ReLU:
		return "relu"
	case LeakyReLU:
		return "leaky_relu"
	case Sigmoid:
		return "sigmoid"
	default:
		return fmt.Sprintf("Func(%d)", uint8(f))
	}
}

// Parse returns the Func named s. Names are case-insensitive and accept
// either "leaky_relu" or "leaky-relu".
func Parse(s string) (Func, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "identity", "linear":
		return Identity, nil
	case "relu":
		return ReLU, nil
	case "leaky_relu", "leakyrelu":
		return LeakyReLU, nil
	case "sigmoid":
		return Sigmoid, nil
	default:
		return 0, fmt.Errorf("unknown activation %q", s)
	}
}
