package dist

import (
	"math"
	"math/rand"
)

// positiveUniform draws U from (0, 1]. rand.Float64 can return exactly 0,
// which would collapse inverse-CDF transforms to zero-length durations, so
// the zero draw is mapped to the smallest positive float.
func positiveUniform(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u == 0 {
		return math.SmallestNonzeroFloat64
	}
	return u
}

// expVariate draws an exponential with the given mean by inverse CDF.
func expVariate(rng *rand.Rand, mean float64) float64 {
	return -mean * math.Log(positiveUniform(rng))
}

// Exponential is the memoryless workhorse of queueing models.
type Exponential struct {
	MeanValue float64
}

func (e *Exponential) Sample(rng *rand.Rand) float64 { return expVariate(rng, e.MeanValue) }
func (e *Exponential) Mean() float64                 { return e.MeanValue }

// Deterministic returns a fixed value on every draw (D in Kendall notation).
type Deterministic struct {
	Value float64
}

func (d *Deterministic) Sample(_ *rand.Rand) float64 { return d.Value }
func (d *Deterministic) Mean() float64               { return d.Value }

// Uniform draws from [Low, High]. A zero draw at Low == 0 is nudged to the
// smallest positive float so durations stay strictly positive.
type Uniform struct {
	Low, High float64
}

func (u *Uniform) Sample(rng *rand.Rand) float64 {
	v := u.Low + (u.High-u.Low)*rng.Float64()
	if v == 0 {
		return math.SmallestNonzeroFloat64
	}
	return v
}

func (u *Uniform) Mean() float64 { return (u.Low + u.High) / 2 }

// Erlang is the sum of K independent exponential stages, each with mean
// Theta. Summing stage draws keeps the sampler exact rather than relying on
// a gamma approximation for integer shape.
type Erlang struct {
	K     int
	Theta float64
}

func (e *Erlang) Sample(rng *rand.Rand) float64 {
	total := 0.0
	for i := 0; i < e.K; i++ {
		total += expVariate(rng, e.Theta)
	}
	return total
}

func (e *Erlang) Mean() float64 { return float64(e.K) * e.Theta }

// Hyperexponential mixes exponential branches: one uniform draw picks the
// branch by cumulative probability, a second drives the branch variate.
type Hyperexponential struct {
	Probs []float64
	Means []float64
}

func (h *Hyperexponential) Sample(rng *rand.Rand) float64 {
	u := rng.Float64()
	cum := 0.0
	for i, p := range h.Probs {
		cum += p
		if u < cum {
			return expVariate(rng, h.Means[i])
		}
	}
	// Rounding can leave cum marginally below 1; fall through to the last
	// branch so every draw selects some branch.
	return expVariate(rng, h.Means[len(h.Means)-1])
}

func (h *Hyperexponential) Mean() float64 {
	m := 0.0
	for i, p := range h.Probs {
		m += p * h.Means[i]
	}
	return m
}

// Hypoexponential is a series of exponential stages with distinct rates; the
// variate is the sum of one draw per stage.
type Hypoexponential struct {
	Rates []float64
}

func (h *Hypoexponential) Sample(rng *rand.Rand) float64 {
	total := 0.0
	for _, r := range h.Rates {
		total += expVariate(rng, 1/r)
	}
	return total
}

func (h *Hypoexponential) Mean() float64 {
	m := 0.0
	for _, r := range h.Rates {
		m += 1 / r
	}
	return m
}

// Coxian is a phase-type distribution: after completing phase i the job
// continues to phase i+1 with probability Cont[i], otherwise it absorbs.
// The final phase always absorbs.
type Coxian struct {
	Rates []float64
	Cont  []float64
}

func (c *Coxian) Sample(rng *rand.Rand) float64 {
	total := 0.0
	for i, r := range c.Rates {
		total += expVariate(rng, 1/r)
		if i == len(c.Rates)-1 || rng.Float64() >= c.Cont[i] {
			break
		}
	}
	return total
}

func (c *Coxian) Mean() float64 {
	m := 0.0
	reach := 1.0
	for i, r := range c.Rates {
		m += reach / r
		if i < len(c.Cont) {
			reach *= c.Cont[i]
		}
	}
	return m
}

// Weibull draws by inverting the CDF: scale * (-ln U)^(1/shape).
type Weibull struct {
	Shape, Scale float64
}

func (w *Weibull) Sample(rng *rand.Rand) float64 {
	return w.Scale * math.Pow(-math.Log(positiveUniform(rng)), 1/w.Shape)
}

func (w *Weibull) Mean() float64 { return w.Scale * math.Gamma(1+1/w.Shape) }

// LogNormal exponentiates a Box-Muller normal draw.
type LogNormal struct {
	Mu, Sigma float64
}

func (l *LogNormal) Sample(rng *rand.Rand) float64 {
	z := math.Sqrt(-2*math.Log(positiveUniform(rng))) * math.Cos(2*math.Pi*rng.Float64())
	return math.Exp(l.Mu + l.Sigma*z)
}

func (l *LogNormal) Mean() float64 { return math.Exp(l.Mu + l.Sigma*l.Sigma/2) }

// Gamma draws with the Marsaglia-Tsang squeeze method. Shape < 1 is handled
// by the standard boost: draw at shape+1 and scale by U^(1/shape).
type Gamma struct {
	Shape, Scale float64
}

func (g *Gamma) Sample(rng *rand.Rand) float64 {
	return gammaVariate(rng, g.Shape, g.Scale)
}

func (g *Gamma) Mean() float64 { return g.Shape * g.Scale }

func gammaVariate(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1 {
		u := positiveUniform(rng)
		return gammaVariate(rng, shape+1, scale) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := positiveUniform(rng)
		if u < 1-0.0331*x*x*x*x {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// Beta draws as a ratio of gamma variates: G(alpha) / (G(alpha) + G(beta)).
// The support is (0, 1), so beta-distributed durations are strictly positive
// without further guards.
type Beta struct {
	Alpha, BetaP float64
}

func (b *Beta) Sample(rng *rand.Rand) float64 {
	x := gammaVariate(rng, b.Alpha, 1)
	y := gammaVariate(rng, b.BetaP, 1)
	return x / (x + y)
}

func (b *Beta) Mean() float64 { return b.Alpha / (b.Alpha + b.BetaP) }

// Pareto draws scale / U^(1/shape), a heavy-tailed variate bounded below by
// Scale.
type Pareto struct {
	Shape, Scale float64
}

func (p *Pareto) Sample(rng *rand.Rand) float64 {
	return p.Scale / math.Pow(positiveUniform(rng), 1/p.Shape)
}

// Mean returns +Inf when Shape <= 1; the expectation does not exist there.
func (p *Pareto) Mean() float64 {
	if p.Shape <= 1 {
		return math.Inf(1)
	}
	return p.Shape * p.Scale / (p.Shape - 1)
}
