package cli

import (
	"github.com/agbru/picalc/internal/config"
	"github.com/agbru/picalc/internal/pi"
)

// GetCalculatorsToRun resolves the calculators selected by cfg: the
// catalogued ones through factory, custom combinations directly.
func GetCalculatorsToRun(cfg config.AppConfig, factory pi.CalculatorFactory) ([]pi.Calculator, error) {
	algs, err := cfg.Algorithms()
	if err != nil {
		return nil, err
	}
	calcs := make([]pi.Calculator, 0, len(algs))
	for _, alg := range algs {
		if alg.ID == pi.CustomID {
			calcs = append(calcs, pi.NewAlgorithmCalculator(alg))
			continue
		}
		calc, err := factory.Get(alg.Tag())
		if err != nil {
			return nil, err
		}
		calcs = append(calcs, calc)
	}
	return calcs, nil
}
