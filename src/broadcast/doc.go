// Package broadcast implements the broadcast state machine: a node accepts
// integer values from clients and spreads them to the whole cluster by push
// gossip.
//
// Every node keeps the set of values it has accepted and, for every node of
// the cluster, the subset that node is known to have. On each gossip tick a
// node sends each neighbor the values that neighbor is not known to have.
// Values count as delivered to n when n acknowledges them with gossip_ok or
// when n gossips them to us. Lost envelopes are simply sent again on the next
// tick, so the cluster converges as long as the topology is connected and
// partitions heal.
//
// There is no ordering and no delivery deadline. The per-node bookkeeping
// grows with the number of values.
package broadcast
