package application

import "strconv"

func formatInt(v int64) string { return strconv.FormatInt(v, 10) }

func formatFloat(v float64) string {
	// sem notação científica para valores comuns (0.02, 1200)
	return strconv.FormatFloat(v, 'f', -1, 64)
}
