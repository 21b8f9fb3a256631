package dagconfig

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// maxAnticoneFactor bounds 2*delay*rate so that e^-factor doesn't underflow.
const maxAnticoneFactor = 500

// AnticoneSize returns the smallest k such that the probability of an
// honest block having more than k blocks created concurrently with it is
// below security.
//
// Block creation is modeled as a Poisson process of the given rate over a
// window of twice the propagation delay, so the number of blocks in the
// anticone of an honest block is Poisson distributed with mean
// 2 * delay * rate.
func AnticoneSize(delay time.Duration, rate float64, security float64) (KType, error) {
	if delay <= 0 {
		return 0, errors.Errorf("propagation delay must be positive, got %s", delay)
	}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, errors.Errorf("block rate must be positive, got %f", rate)
	}
	if security <= 0 || security >= 1 {
		return 0, errors.Errorf("security must be in (0, 1), got %f", security)
	}

	factor := 2 * delay.Seconds() * rate
	if factor > maxAnticoneFactor {
		return 0, errors.Errorf("keep 2 * delay * rate under %d, got %f", maxAnticoneFactor, factor)
	}

	// term is P(X = k) and cdf is P(X <= k).
	term := math.Exp(-factor)
	cdf := term
	for k := 0; k <= math.MaxUint8; k++ {
		if k > 0 {
			term *= factor / float64(k)
			cdf += term
		}
		if 1-cdf < security {
			return KType(k), nil
		}
	}
	return 0, errors.Errorf("no anticone size up to %d reaches security %f for factor %f",
		math.MaxUint8, security, factor)
}
