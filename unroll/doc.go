// Package unroll expands a two-slice template into the full temporal network
// for a fixed horizon T: the template is instantiated once per time step,
// intra edges are replicated within every slice and inter edges between every
// consecutive slice pair.
//
// What:
//
//   - Node: one instantiated variable, identified by (Template, Slice), with
//     an ordered parent list and the parameter group it draws its
//     linear-Gaussian conditional from.
//   - Graph: T·N nodes with |intra|·T + |inter|·(T−1) edges.
//
// Parent order is the contract between the unrolled graph and every
// parameter group's weight vector: intra parents first (template declaration
// order), then inter parents (declaration order). Slice-1 nodes carry intra
// parents only, which is exactly why they own separate parameter groups.
//
// Errors:
//
//   - ErrBadHorizon  T < 1
//
// Complexity: O(T·(N+E)) time and memory.
package unroll
