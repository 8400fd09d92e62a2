package ppo

// KLController adjusts the KL penalty coefficient between optimizer
// steps.
type KLController interface {
	// Value returns the current coefficient.
	Value() float64
	// Update observes the measured KL and the number of samples the
	// measurement covered.
	Update(current float64, nSteps int)
}

// AdaptiveKLController scales the coefficient proportionally toward a
// target KL, with the error clipped to ±0.2 and the step scaled by
// nSteps over the horizon.
type AdaptiveKLController struct {
	value   float64
	target  float64
	horizon int
}

// NewAdaptiveKLController creates an adaptive controller starting at
// initKLCoef.
func NewAdaptiveKLController(initKLCoef, target float64, horizon int) *AdaptiveKLController {
	return &AdaptiveKLController{value: initKLCoef, target: target, horizon: horizon}
}

func (c *AdaptiveKLController) Value() float64 { return c.value }

func (c *AdaptiveKLController) Update(current float64, nSteps int) {
	proportionalError := current/c.target - 1
	if proportionalError > 0.2 {
		proportionalError = 0.2
	} else if proportionalError < -0.2 {
		proportionalError = -0.2
	}
	mult := 1 + proportionalError*float64(nSteps)/float64(c.horizon)
	c.value *= mult
}

// FixedKLController keeps the coefficient constant.
type FixedKLController struct {
	value float64
}

// NewFixedKLController creates a controller pinned at klCoef.
func NewFixedKLController(klCoef float64) *FixedKLController {
	return &FixedKLController{value: klCoef}
}

func (c *FixedKLController) Value() float64          { return c.value }
func (c *FixedKLController) Update(_ float64, _ int) {}

// ControllerFor returns the controller the config asks for.
func ControllerFor(cfg Config) KLController {
	if cfg.AdaptiveKL {
		return NewAdaptiveKLController(cfg.InitKLCoef, cfg.TargetKL, cfg.KLHorizon)
	}
	return NewFixedKLController(cfg.InitKLCoef)
}
