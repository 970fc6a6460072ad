package scalar

import (
	"math"

	"github.com/born-ml/minitorch/internal/autodiff"
)

// Ctx is the Context type of scalar Functions.
type Ctx = autodiff.Context[float64]

// binary unpacks the two saved operands of a binary function.
func binary(ctx *Ctx) (float64, float64, error) {
	a, err := ctx.Saved(0)
	if err != nil {
		return 0, 0, err
	}
	b, err := ctx.Saved(1)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// AddFn computes a + b.
//
// Backward: d(a+b)/da = d(a+b)/db = 1, so the gradient flows unchanged to both inputs.
type AddFn struct{}

// Name implements autodiff.Function.
func (AddFn) Name() string { return "Add" }

// Forward implements autodiff.Function.
func (AddFn) Forward(_ *Ctx, in ...float64) (float64, error) {
	return in[0] + in[1], nil
}

// Backward implements autodiff.Function.
func (AddFn) Backward(_ *Ctx, grad float64) ([]float64, error) {
	return []float64{grad, grad}, nil
}

// SubFn computes a - b.
type SubFn struct{}

// Name implements autodiff.Function.
func (SubFn) Name() string { return "Sub" }

// Forward implements autodiff.Function.
func (SubFn) Forward(_ *Ctx, in ...float64) (float64, error) {
	return in[0] - in[1], nil
}

// Backward implements autodiff.Function.
func (SubFn) Backward(_ *Ctx, grad float64) ([]float64, error) {
	return []float64{grad, -grad}, nil
}

// MulFn computes a * b.
//
// Backward:
//   - d(a*b)/da = b, so grad_a = grad * b
//   - d(a*b)/db = a, so grad_b = grad * a
type MulFn struct{}

// Name implements autodiff.Function.
func (MulFn) Name() string { return "Mul" }

// Forward implements autodiff.Function.
func (MulFn) Forward(ctx *Ctx, in ...float64) (float64, error) {
	ctx.SaveForBackward(in[0], in[1])
	return in[0] * in[1], nil
}

// Backward implements autodiff.Function.
func (MulFn) Backward(ctx *Ctx, grad float64) ([]float64, error) {
	a, b, err := binary(ctx)
	if err != nil {
		return nil, err
	}
	return []float64{grad * b, grad * a}, nil
}

// DivFn computes a / b.
type DivFn struct{}

// Name implements autodiff.Function.
func (DivFn) Name() string { return "Div" }

// Forward implements autodiff.Function.
func (DivFn) Forward(ctx *Ctx, in ...float64) (float64, error) {
	ctx.SaveForBackward(in[0], in[1])
	return in[0] / in[1], nil
}

// Backward implements autodiff.Function.
func (DivFn) Backward(ctx *Ctx, grad float64) ([]float64, error) {
	a, b, err := binary(ctx)
	if err != nil {
		return nil, err
	}
	return []float64{grad / b, -grad * a / (b * b)}, nil
}

// NegFn computes -x.
type NegFn struct{}

// Name implements autodiff.Function.
func (NegFn) Name() string { return "Neg" }

// Forward implements autodiff.Function.
func (NegFn) Forward(_ *Ctx, in ...float64) (float64, error) {
	return -in[0], nil
}

// Backward implements autodiff.Function.
func (NegFn) Backward(_ *Ctx, grad float64) ([]float64, error) {
	return []float64{-grad}, nil
}

// InvFn computes 1/x.
type InvFn struct{}

// Name implements autodiff.Function.
func (InvFn) Name() string { return "Inv" }

// Forward implements autodiff.Function.
func (InvFn) Forward(ctx *Ctx, in ...float64) (float64, error) {
	ctx.SaveForBackward(in[0])
	return 1 / in[0], nil
}

// Backward implements autodiff.Function.
func (InvFn) Backward(ctx *Ctx, grad float64) ([]float64, error) {
	x, err := ctx.Saved(0)
	if err != nil {
		return nil, err
	}
	return []float64{-grad / (x * x)}, nil
}

// LogFn computes the natural logarithm.
type LogFn struct{}

// Name implements autodiff.Function.
func (LogFn) Name() string { return "Log" }

// Forward implements autodiff.Function.
func (LogFn) Forward(ctx *Ctx, in ...float64) (float64, error) {
	ctx.SaveForBackward(in[0])
	return math.Log(in[0]), nil
}

// Backward implements autodiff.Function.
func (LogFn) Backward(ctx *Ctx, grad float64) ([]float64, error) {
	x, err := ctx.Saved(0)
	if err != nil {
		return nil, err
	}
	return []float64{grad / x}, nil
}

// ExpFn computes e^x. Backward reuses the saved output: d(e^x)/dx = e^x.
type ExpFn struct{}

// Name implements autodiff.Function.
func (ExpFn) Name() string { return "Exp" }

// Forward implements autodiff.Function.
func (ExpFn) Forward(ctx *Ctx, in ...float64) (float64, error) {
	out := math.Exp(in[0])
	ctx.SaveForBackward(out)
	return out, nil
}

// Backward implements autodiff.Function.
func (ExpFn) Backward(ctx *Ctx, grad float64) ([]float64, error) {
	out, err := ctx.Saved(0)
	if err != nil {
		return nil, err
	}
	return []float64{grad * out}, nil
}

// SigmoidFn computes 1/(1+e^-x). Backward: σ(x)(1-σ(x)).
type SigmoidFn struct{}

// Name implements autodiff.Function.
func (SigmoidFn) Name() string { return "Sigmoid" }

// Forward implements autodiff.Function.
func (SigmoidFn) Forward(ctx *Ctx, in ...float64) (float64, error) {
	out := Sigmoid64(in[0])
	ctx.SaveForBackward(out)
	return out, nil
}

// Backward implements autodiff.Function.
func (SigmoidFn) Backward(ctx *Ctx, grad float64) ([]float64, error) {
	s, err := ctx.Saved(0)
	if err != nil {
		return nil, err
	}
	return []float64{grad * s * (1 - s)}, nil
}

// Sigmoid64 is a numerically stable logistic function.
func Sigmoid64(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// ReLUFn computes max(0, x). The derivative at 0 is taken as 0.
type ReLUFn struct{}

// Name implements autodiff.Function.
func (ReLUFn) Name() string { return "ReLU" }

// Forward implements autodiff.Function.
func (ReLUFn) Forward(ctx *Ctx, in ...float64) (float64, error) {
	ctx.SaveForBackward(in[0])
	return math.Max(in[0], 0), nil
}

// Backward implements autodiff.Function.
func (ReLUFn) Backward(ctx *Ctx, grad float64) ([]float64, error) {
	x, err := ctx.Saved(0)
	if err != nil {
		return nil, err
	}
	if x > 0 {
		return []float64{grad}, nil
	}
	return []float64{0}, nil
}

// LTFn computes 1 if a < b else 0. Its derivative is zero everywhere.
type LTFn struct{}

// Name implements autodiff.Function.
func (LTFn) Name() string { return "LT" }

// Forward implements autodiff.Function.
func (LTFn) Forward(_ *Ctx, in ...float64) (float64, error) {
	if in[0] < in[1] {
		return 1, nil
	}
	return 0, nil
}

// Backward implements autodiff.Function.
func (LTFn) Backward(_ *Ctx, _ float64) ([]float64, error) {
	return []float64{0, 0}, nil
}

// EQFn computes 1 if a == b else 0. Its derivative is zero everywhere.
type EQFn struct{}

// Name implements autodiff.Function.
func (EQFn) Name() string { return "EQ" }

// Forward implements autodiff.Function.
func (EQFn) Forward(_ *Ctx, in ...float64) (float64, error) {
	if in[0] == in[1] {
		return 1, nil
	}
	return 0, nil
}

// Backward implements autodiff.Function.
func (EQFn) Backward(_ *Ctx, _ float64) ([]float64, error) {
	return []float64{0, 0}, nil
}
