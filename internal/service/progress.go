package service

import (
	"math"

	errorvalues "github.com/limbo/fittrack/internal/error_values"
	"github.com/limbo/fittrack/pkg/entity"
)

// Share of lost body weight assumed to be fat
const fatShare = 0.9

func EstimateFatLoss(weightBefore, weightAfter float64) (*entity.FatLossEstimate, error) {
	if !validWeight(weightBefore) || !validWeight(weightAfter) {
		return nil, errorvalues.ErrInvalidWeights
	}
	change := weightBefore - weightAfter
	estimate := &entity.FatLossEstimate{
		WeightChange: round2(change),
	}
	switch {
	case change < 0:
		estimate.Direction = "gain"
	case change == 0:
		estimate.Direction = "none"
	default:
		fatLoss := fatShare * change
		estimate.Direction = "loss"
		estimate.FatLossKg = round2(fatLoss)
		estimate.FatLossPercentage = round2(fatLoss / weightBefore * 100)
	}
	return estimate, nil
}

func validWeight(w float64) bool {
	return w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
