package services

import "math"

// targetStepKm is the display granularity for daily targets.
const targetStepKm = 0.5

// curvePhase is one linear segment of the target ramp. Each phase anchors at
// its own start value, so consecutive phases join without a jump.
type curvePhase struct {
	startDay int
	endDay   int
	startKm  float64
	endKm    float64
}

var curvePhases = []curvePhase{
	{startDay: 1, endDay: 30, startKm: 1.0, endKm: 2.5},
	{startDay: 31, endDay: 60, startKm: 2.5, endKm: 4.0},
	{startDay: 61, endDay: 100, startKm: 4.0, endKm: 6.0},
	{startDay: 101, endDay: 200, startKm: 6.0, endKm: 8.0},
}

// TargetForStreakDay maps a 1-indexed streak day to its distance target in
// kilometers. The value ramps linearly inside each phase, caps at day 200,
// and is rounded to the nearest 0.5 km for display friendliness.
func TargetForStreakDay(day int) float64 {
	if day < 1 {
		day = 1
	}
	last := curvePhases[len(curvePhases)-1]
	if day > last.endDay {
		day = last.endDay
	}

	for _, p := range curvePhases {
		if day > p.endDay {
			continue
		}
		span := p.endDay - p.startDay
		frac := float64(day-p.startDay) / float64(span)
		raw := p.startKm + frac*(p.endKm-p.startKm)
		return roundToStep(raw)
	}
	return roundToStep(last.endKm)
}

func roundToStep(v float64) float64 {
	return math.Round(v/targetStepKm) * targetStepKm
}
