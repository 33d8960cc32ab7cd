// Package template defines the two-slice template of a linear-Gaussian
// temporal network: the dependency pattern that is repeated once per time
// step when the full network is unrolled.
//
// What:
//
//   - Node: one template position with an index, a human-readable name,
//     a Role (Observed or Hidden), and two immutable parameter-group ids —
//     one for its slice-1 instance, one shared by all its slice-≥2 instances.
//   - Edge: a parent→child pair of template positions. Intra edges connect
//     positions within one slice and must form a DAG. Inter edges connect a
//     position in slice t to a position in slice t+1; cycles across time
//     (including self-persistence edges i→i) are permitted and expected.
//   - Graph: the validated template, constructed once by New and immutable
//     afterwards.
//
// Why:
//
//	The template is the single source of truth for structure and parameter
//	tying. Group ids are assigned here, at construction time, and never
//	renumbered: slice-1 instances get their own groups because they lack the
//	inter-slice parents their slice-≥2 siblings always have, so tying them
//	would mismatch regression arity.
//
// Errors:
//
//   - ErrNoNodes         n < 1
//   - ErrNodeOutOfRange  an edge endpoint or observed index is not in [0,n)
//   - ErrDuplicateEdge   the same edge is declared twice
//   - ErrIntraCycle      the intra-slice edges contain a directed cycle
//
// All constructor failures are reported before any training machinery runs;
// branch on them with errors.Is.
package template
