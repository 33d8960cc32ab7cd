// Package marginals extracts per-time-step posterior (mean, variance) pairs
// for chosen template positions after training, and writes plain numeric
// columns for downstream consumption.
//
// Extract is a convenience pass: it reruns the exact inference engine once
// with the selected parameters and slices out the requested positions. The
// sequences are finite (length T, aligned one-to-one with the input rows)
// and recomputed per call; nothing is cached.
package marginals

import (
	"bufio"
	"fmt"
	"io"

	"github.com/luusitalo/BalticFoodwebModel/dataset"
	"github.com/luusitalo/BalticFoodwebModel/lingauss"
	"github.com/luusitalo/BalticFoodwebModel/smoother"
	"github.com/luusitalo/BalticFoodwebModel/template"
	"github.com/luusitalo/BalticFoodwebModel/unroll"
)

// Stat is one posterior marginal: mean and variance of a node at one time
// step given all observed data. Variance is exactly 0 for a cell that was
// observed, nonnegative otherwise.
type Stat struct {
	Mean     float64
	Variance float64
}

// Series is the full-horizon marginal sequence of one template position.
type Series struct {
	Node  int
	Name  string
	Stats []Stat
}

// Means returns the mean column of the series, in time order.
func (s Series) Means() []float64 {
	out := make([]float64, len(s.Stats))
	for t, st := range s.Stats {
		out[t] = st.Mean
	}

	return out
}

// Variances returns the variance column of the series, in time order.
func (s Series) Variances() []float64 {
	out := make([]float64, len(s.Stats))
	for t, st := range s.Stats {
		out[t] = st.Variance
	}

	return out
}

// Extract runs one inference pass under store and returns the marginal
// series of the requested template positions, in request order. An
// out-of-range position surfaces template.ErrNodeOutOfRange.
func Extract(ug *unroll.Graph, store *lingauss.Store, data *dataset.Dataset, nodes []int) ([]Series, error) {
	for _, i := range nodes {
		if i < 0 || i >= ug.N() {
			return nil, fmt.Errorf("%w: requested node %d (n=%d)", template.ErrNodeOutOfRange, i, ug.N())
		}
	}

	res, err := smoother.Run(ug, store, data)
	if err != nil {
		return nil, fmt.Errorf("marginals: %w", err)
	}

	series := make([]Series, len(nodes))
	for si, i := range nodes {
		s := Series{
			Node:  i,
			Name:  ug.Template().Node(i).Name,
			Stats: make([]Stat, data.T()),
		}
		for t := 0; t < data.T(); t++ {
			s.Stats[t] = Stat{Mean: res.Means[t][i], Variance: res.Vars[t][i]}
		}
		series[si] = s
	}

	return series, nil
}

// WriteColumn writes one value per line in time order — the plain numeric
// export format consumed downstream.
func WriteColumn(w io.Writer, values []float64) error {
	bw := bufio.NewWriter(w)
	for _, v := range values {
		if _, err := fmt.Fprintf(bw, "%g\n", v); err != nil {
			return fmt.Errorf("marginals: write column: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("marginals: write column: %w", err)
	}

	return nil
}
