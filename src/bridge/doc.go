// Package bridge implements the node's gossip bridge: a long-lived actor
// that admits transactions and blocks from external peers, deduplicates
// them, screens them through the content firewall, and fans them out to both
// the internal gossip mesh and the remote HTTP peers.
//
// The bridge owns all of its state (peer lists, processed-id window, ignore
// list, mesh state) and mutates it only from its own message loop. Slow work
// (wire sends, peer scans) runs in short-lived spawned tasks so the mailbox
// stays responsive; those tasks communicate back exclusively by posting
// messages.
package bridge
