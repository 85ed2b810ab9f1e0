// Package throttle maintains per-node network state and computes state-aware
// transaction limits.
//
// The throttle observes settled transaction flow and keeps, for every node, a
// state vector of three variables in [0, 1]:
//
//   - network_stress: exponentially weighted utilization of the node's
//     configured flow capacity
//   - node_centrality: the node's normalized share of total observed flow
//   - friction_score: exponentially weighted share of observations carrying
//     data gaps (incomplete KYC, missing sanctions screening)
//
// A rule's base amount limit is scaled by a single adjustment function of the
// state vector, identical for every node. The function is monotone
// non-increasing in all three inputs and bounded to [0, 1]: the more central
// and the more stressed a node, the tighter its limit.
//
// Nodes with no observed history get the worst-case state vector {1, 1, 1},
// so unmodeled nodes are throttled hardest, never exempted.
//
// # Concurrency
//
// All mutation flows through Observe, which serializes writers internally.
// Readers call Snapshot or ComputeLimit, which copy state under a read lock;
// an evaluation therefore works against an immutable copy and never blocks an
// in-flight observation, nor the other way around.
package throttle
