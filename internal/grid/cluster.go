package grid

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ClusterValues groups edge coordinates into grid lines.
//
// Values are sorted ascending and swept once. A value joins the current
// cluster when it is at most mean+tolerance (inclusive) and starts a new
// cluster when strictly greater; the mean is recomputed after every join.
// Clusters come back sorted by Mean. A negative or NaN tolerance is treated as 0.
func ClusterValues(values []int, tolerance float64) []Cluster {
	if len(values) == 0 {
		return nil
	}
	if !(tolerance > 0) {
		tolerance = 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var clusters []Cluster
	members := make([]float64, 0, len(sorted))
	var mean float64

	flush := func() {
		clusters = append(clusters, Cluster{
			Mean:  mean,
			Count: len(members),
			Min:   int(members[0]),
			Max:   int(members[len(members)-1]),
		})
		members = members[:0]
	}

	for _, v := range sorted {
		fv := float64(v)
		if len(members) > 0 && fv > mean+tolerance {
			flush()
		}
		members = append(members, fv)
		mean = stat.Mean(members, nil)
	}
	flush()
	return clusters
}

// IndexOf returns the index of the cluster whose member range holds v.
// When none does, the cluster with the nearest mean is returned (lowest
// index on ties). Returns -1 for an empty slice.
func IndexOf(clusters []Cluster, v int) int {
	if len(clusters) == 0 {
		return -1
	}
	i, _ := slices.BinarySearchFunc(clusters, v, func(c Cluster, v int) int {
		switch {
		case c.Max < v:
			return -1
		case c.Min > v:
			return 1
		}
		return 0
	})
	if i < len(clusters) && clusters[i].Contains(v) {
		return i
	}

	best := 0
	bestDist := abs(clusters[0].Mean - float64(v))
	for j := 1; j < len(clusters); j++ {
		if d := abs(clusters[j].Mean - float64(v)); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

// Pitch returns the mean and sample standard deviation of the gaps between
// adjacent cluster means. Fewer than two clusters give zeros.
func Pitch(clusters []Cluster) (mean, stdDev float64) {
	if len(clusters) < 2 {
		return 0, 0
	}
	gaps := make([]float64, len(clusters)-1)
	for i := range gaps {
		gaps[i] = clusters[i+1].Mean - clusters[i].Mean
	}
	if len(gaps) == 1 {
		return gaps[0], 0
	}
	return stat.MeanStdDev(gaps, nil)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
