package coordinator

import "math"

const maxCriterionScore = 10

// Criterion weights in percent; they sum to 100.
const (
	weightInnovation   = 25
	weightTechnical    = 30
	weightPresentation = 15
	weightFeasibility  = 15
	weightImpact       = 15
)

type Scores struct {
	Innovation   float64
	Technical    float64
	Presentation float64
	Feasibility  float64
	Impact       float64
}

// WeightedTotal is round1(Σ score·weight / 100), a value in [0, 10].
func WeightedTotal(s Scores) float64 {
	sum := s.Innovation*weightInnovation +
		s.Technical*weightTechnical +
		s.Presentation*weightPresentation +
		s.Feasibility*weightFeasibility +
		s.Impact*weightImpact
	total := sum / 100
	return math.Round(total*10) / 10
}

func (s Scores) validate() error {
	for _, c := range []struct {
		name  string
		value float64
	}{
		{"innovation", s.Innovation},
		{"technical", s.Technical},
		{"presentation", s.Presentation},
		{"feasibility", s.Feasibility},
		{"impact", s.Impact},
	} {
		if math.IsNaN(c.value) || c.value < 0 || c.value > maxCriterionScore {
			return validationError("%s score must be between 0 and %d", c.name, maxCriterionScore)
		}
	}
	return nil
}
