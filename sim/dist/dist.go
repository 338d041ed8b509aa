// Package dist provides random variate generation for the simulation engine.
//
// Every supported distribution is a typed Sampler struct constructed through
// New from an out-of-band Spec (typically parsed from a YAML scenario).
// Construction validates all parameters, so once a Sampler exists, sampling
// cannot fail: ErrUnsupportedDistribution and parameter errors are only
// reachable from configuration input.
package dist

import (
	"errors"
	"fmt"
	"math/rand"
)

// Kind names a supported distribution family.
type Kind string

const (
	Exp       Kind = "exponential"
	Det       Kind = "deterministic"
	Unif      Kind = "uniform"
	ErlangK   Kind = "erlang"
	HyperExp  Kind = "hyperexponential"
	HypoExp   Kind = "hypoexponential"
	CoxianPH  Kind = "coxian"
	WeibullK  Kind = "weibull"
	LogNorm   Kind = "lognormal"
	GammaK    Kind = "gamma"
	BetaK     Kind = "beta"
	ParetoK   Kind = "pareto"
)

// ErrUnsupportedDistribution reports a Kind outside the supported set.
// It can only arise from out-of-band input (e.g. a YAML scenario); samplers
// built by New never produce it at sampling time.
var ErrUnsupportedDistribution = errors.New("unsupported distribution")

// Spec describes a distribution in configuration form. Scalar-parameter
// families use Params; the phase-type and mixture families use the slice
// fields.
type Spec struct {
	Kind   Kind               `yaml:"kind"`
	Params map[string]float64 `yaml:"params,omitempty"`

	// Hyperexponential mixing probabilities and branch means.
	Probs []float64 `yaml:"probs,omitempty"`
	Means []float64 `yaml:"means,omitempty"`

	// Hypoexponential / Coxian phase rates and Coxian continue probabilities.
	Rates    []float64 `yaml:"rates,omitempty"`
	Continue []float64 `yaml:"continue,omitempty"`
}

// Sampler draws variates from one fixed distribution.
// Implementations are pure: all state lives in the *rand.Rand stream, so a
// Sampler may be shared across nodes as long as each holds its own stream.
type Sampler interface {
	// Sample returns one draw. Duration-valued families return strictly
	// positive values for every draw.
	Sample(rng *rand.Rand) float64
	// Mean returns the closed-form expectation of the distribution.
	Mean() float64
}

// requireParams checks that all required keys exist in a Spec's Params map.
func requireParams(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// New builds a Sampler from a Spec, validating every parameter.
func New(spec Spec) (Sampler, error) {
	switch spec.Kind {
	case Exp:
		if err := requireParams(spec.Params, "mean"); err != nil {
			return nil, err
		}
		m := spec.Params["mean"]
		if m <= 0 {
			return nil, fmt.Errorf("exponential mean must be > 0, got %v", m)
		}
		return &Exponential{MeanValue: m}, nil

	case Det:
		if err := requireParams(spec.Params, "value"); err != nil {
			return nil, err
		}
		v := spec.Params["value"]
		if v <= 0 {
			return nil, fmt.Errorf("deterministic value must be > 0, got %v", v)
		}
		return &Deterministic{Value: v}, nil

	case Unif:
		if err := requireParams(spec.Params, "low", "high"); err != nil {
			return nil, err
		}
		low, high := spec.Params["low"], spec.Params["high"]
		if low < 0 || high <= low {
			return nil, fmt.Errorf("uniform requires 0 <= low < high, got [%v, %v]", low, high)
		}
		return &Uniform{Low: low, High: high}, nil

	case ErlangK:
		if err := requireParams(spec.Params, "k", "theta"); err != nil {
			return nil, err
		}
		k := int(spec.Params["k"])
		theta := spec.Params["theta"]
		if k < 1 || float64(k) != spec.Params["k"] {
			return nil, fmt.Errorf("erlang k must be a positive integer, got %v", spec.Params["k"])
		}
		if theta <= 0 {
			return nil, fmt.Errorf("erlang theta must be > 0, got %v", theta)
		}
		return &Erlang{K: k, Theta: theta}, nil

	case HyperExp:
		if len(spec.Probs) == 0 || len(spec.Probs) != len(spec.Means) {
			return nil, fmt.Errorf("hyperexponential requires equal-length probs and means, got %d and %d",
				len(spec.Probs), len(spec.Means))
		}
		total := 0.0
		for i, p := range spec.Probs {
			if p < 0 {
				return nil, fmt.Errorf("hyperexponential probs[%d] is negative: %v", i, p)
			}
			if spec.Means[i] <= 0 {
				return nil, fmt.Errorf("hyperexponential means[%d] must be > 0, got %v", i, spec.Means[i])
			}
			total += p
		}
		if total < 1-probTolerance || total > 1+probTolerance {
			return nil, fmt.Errorf("hyperexponential probs must sum to 1, got %v", total)
		}
		return &Hyperexponential{Probs: append([]float64(nil), spec.Probs...),
			Means: append([]float64(nil), spec.Means...)}, nil

	case HypoExp:
		if len(spec.Rates) == 0 {
			return nil, fmt.Errorf("hypoexponential requires at least one rate")
		}
		for i, r := range spec.Rates {
			if r <= 0 {
				return nil, fmt.Errorf("hypoexponential rates[%d] must be > 0, got %v", i, r)
			}
		}
		return &Hypoexponential{Rates: append([]float64(nil), spec.Rates...)}, nil

	case CoxianPH:
		if len(spec.Rates) == 0 {
			return nil, fmt.Errorf("coxian requires at least one rate")
		}
		if len(spec.Continue) != len(spec.Rates)-1 {
			return nil, fmt.Errorf("coxian requires len(continue) == len(rates)-1, got %d and %d",
				len(spec.Continue), len(spec.Rates))
		}
		for i, r := range spec.Rates {
			if r <= 0 {
				return nil, fmt.Errorf("coxian rates[%d] must be > 0, got %v", i, r)
			}
		}
		for i, c := range spec.Continue {
			if c < 0 || c > 1 {
				return nil, fmt.Errorf("coxian continue[%d] must be in [0, 1], got %v", i, c)
			}
		}
		return &Coxian{Rates: append([]float64(nil), spec.Rates...),
			Cont: append([]float64(nil), spec.Continue...)}, nil

	case WeibullK:
		if err := requireParams(spec.Params, "shape", "scale"); err != nil {
			return nil, err
		}
		shape, scale := spec.Params["shape"], spec.Params["scale"]
		if shape <= 0 || scale <= 0 {
			return nil, fmt.Errorf("weibull shape and scale must be > 0, got %v and %v", shape, scale)
		}
		return &Weibull{Shape: shape, Scale: scale}, nil

	case LogNorm:
		if err := requireParams(spec.Params, "mu", "sigma"); err != nil {
			return nil, err
		}
		sigma := spec.Params["sigma"]
		if sigma <= 0 {
			return nil, fmt.Errorf("lognormal sigma must be > 0, got %v", sigma)
		}
		return &LogNormal{Mu: spec.Params["mu"], Sigma: sigma}, nil

	case GammaK:
		if err := requireParams(spec.Params, "shape", "scale"); err != nil {
			return nil, err
		}
		shape, scale := spec.Params["shape"], spec.Params["scale"]
		if shape <= 0 || scale <= 0 {
			return nil, fmt.Errorf("gamma shape and scale must be > 0, got %v and %v", shape, scale)
		}
		return &Gamma{Shape: shape, Scale: scale}, nil

	case BetaK:
		if err := requireParams(spec.Params, "alpha", "beta"); err != nil {
			return nil, err
		}
		alpha, beta := spec.Params["alpha"], spec.Params["beta"]
		if alpha <= 0 || beta <= 0 {
			return nil, fmt.Errorf("beta alpha and beta must be > 0, got %v and %v", alpha, beta)
		}
		return &Beta{Alpha: alpha, BetaP: beta}, nil

	case ParetoK:
		if err := requireParams(spec.Params, "shape", "scale"); err != nil {
			return nil, err
		}
		shape, scale := spec.Params["shape"], spec.Params["scale"]
		if shape <= 0 || scale <= 0 {
			return nil, fmt.Errorf("pareto shape and scale must be > 0, got %v and %v", shape, scale)
		}
		return &Pareto{Shape: shape, Scale: scale}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDistribution, spec.Kind)
	}
}

// probTolerance bounds how far a probability vector may drift from summing
// to exactly 1 before the Spec is rejected.
const probTolerance = 1e-6
