// Package lingauss stores the linear-Gaussian conditional parameters of the
// temporal network, one Group per parameter group id.
//
// A Group holds a regression weight per declared parent, an intercept, and
// one scalar noise variance: a node's conditional is Normal with mean equal
// to an affine function of its parents and a node-specific variance. Every
// node is scalar, so "diagonal covariance" reduces to exactly this — one
// independent variance per node, no cross-node noise correlation beyond what
// shared parents induce.
//
// Group arity is fixed when the Store is built from an unrolled graph and
// never changes; Set rejects replacements of the wrong arity. Init draws
// weights and intercepts i.i.d. from a standard normal and sets every
// variance to 1.0 — the documented initialization baseline. Variances are
// floored at MinVariance to keep later eliminations well-conditioned.
package lingauss
