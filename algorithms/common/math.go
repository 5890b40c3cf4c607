package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions shared across algorithms, using gonum for robustness

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Max returns the maximum value of a slice using gonum
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Max(data)
}

// MatrixMax returns the maximum value over all rows of a matrix
func MatrixMax(matrix [][]float64) float64 {
	max := math.Inf(-1)
	for _, row := range matrix {
		if len(row) == 0 {
			continue
		}
		if rowMax := floats.Max(row); rowMax > max {
			max = rowMax
		}
	}
	if math.IsInf(max, -1) {
		return 0.0
	}
	return max
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, val := range data {
		sumSquares += val * val
	}

	return math.Sqrt(sumSquares / float64(len(data)))
}
