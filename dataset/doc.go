// Package dataset holds the observation table the network is conditioned on:
// T rows (time steps) by N columns (template positions) of tagged cells.
//
// A cell is either Present(x) or Missing — an explicit tag, never a numeric
// sentinel — so missing entries can never leak into arithmetic. Observed
// columns may still contain Missing cells at specific times; Hidden columns
// are Missing at every time step (MaskHidden enforces this at the boundary).
//
// ReadCSV is the thin collaborator surface for file input: the first row is
// a header and is skipped, empty fields and the markers NA / NaN become
// Missing. Anything more elaborate (cleaning, resampling) belongs upstream.
//
// Errors:
//
//   - ErrRowWidth  a row's width differs from N (reported with the row index)
package dataset
