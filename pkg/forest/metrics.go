package forest

import "math"

// RMSE is the root mean squared error between observed and predicted.
func RMSE(obs, pred []float64) float64 {
	var sse float64
	for i := range obs {
		d := obs[i] - pred[i]
		sse += d * d
	}
	return math.Sqrt(sse / float64(len(obs)))
}

// MAE is the mean absolute error between observed and predicted.
func MAE(obs, pred []float64) float64 {
	var sum float64
	for i := range obs {
		sum += math.Abs(obs[i] - pred[i])
	}
	return sum / float64(len(obs))
}

// RSquared is the fraction of variance explained. Zero when the
// observations have no variance.
func RSquared(obs, pred []float64) float64 {
	var sum float64
	for _, v := range obs {
		sum += v
	}
	mean := sum / float64(len(obs))

	var ssTot, ssRes float64
	for i := range obs {
		ssTot += (obs[i] - mean) * (obs[i] - mean)
		ssRes += (obs[i] - pred[i]) * (obs[i] - pred[i])
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
