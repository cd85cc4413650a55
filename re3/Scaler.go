package re3

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Coefficient returns the intrinsic reward coefficient
// beta * (1 - kappa)^timeSteps. With kappa = 0 the coefficient is
// constant, and with kappa = 1 it is 0 for all timeSteps > 0.
func Coefficient(beta, kappa float64, timeSteps int) float64 {
	return beta * math.Pow(1-kappa, float64(timeSteps))
}

// Scale multiplies each element of rewards by coefficient in place
func Scale(rewards *mat.Dense, coefficient float64) {
	if rewards.IsEmpty() {
		return
	}
	rewards.Scale(coefficient, rewards)
}
