package audio

import "github.com/robmorgan/beatkeeper/utils"

// VolumeStep is the amount a single volume adjustment changes the gain by.
const VolumeStep = 0.1

// GainController steps a GainParam up and down in fixed increments.
type GainController struct {
	param GainParam
}

// NewGainController creates a new GainController for param
func NewGainController(param GainParam) *GainController {
	return &GainController{param: param}
}

// Volume returns the current gain.
func (g *GainController) Volume() float64 {
	return g.param.Value()
}

// Increase raises the gain by one step. The gain is rounded to one decimal first so repeated steps do not drift.
func (g *GainController) Increase() {
	rounded := utils.RoundTo(g.param.Value(), 1)
	if rounded >= 1 {
		return
	}
	g.param.Set(utils.Clamp(rounded+VolumeStep, 0, 1))
}

// Decrease lowers the gain by one step.
func (g *GainController) Decrease() {
	rounded := utils.RoundTo(g.param.Value(), 1)
	if rounded <= 0 {
		return
	}
	g.param.Set(utils.Clamp(rounded-VolumeStep, 0, 1))
}
