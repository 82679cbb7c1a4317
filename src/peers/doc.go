// Package peers defines the endpoints of remote weaver nodes and the sets
// they are organized in.
//
// A peer endpoint is an IPv4 quad and a port; peers have no identity beyond
// their endpoint. The bridge keeps an ordered set of remote peers which is
// periodically refreshed through a Manager.
package peers
