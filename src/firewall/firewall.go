package firewall

import (
	"github.com/sirupsen/logrus"
)

// ScanType tags the kind of payload submitted to the firewall.
type ScanType int

const (
	// ScanTx screens transaction data against the signature table.
	ScanTx ScanType = iota

	// ScanBlock always passes; the block payload is not matched against
	// the signature table.
	ScanBlock
)

// ScanRequest asks the firewall to screen a payload. The verdict is
// delivered on ReplyCh.
type ScanRequest struct {
	Type    ScanType
	Data    []byte
	ReplyCh chan<- ScanResult
}

// ScanResult echoes the scanned payload together with the verdict.
type ScanResult struct {
	Data []byte
	Pass bool
}

// Firewall is a long-lived actor screening payloads against a table of
// binary signatures. The table is read-only after initialization; all
// requests go through the mailbox.
type Firewall struct {
	sigs   []Signature
	reqCh  chan ScanRequest
	stopCh chan struct{}
	logger *logrus.Entry
}

// NewFirewall returns a Firewall holding the given signature table. Run must
// be called before submitting requests.
func NewFirewall(sigs []Signature, logger *logrus.Entry) *Firewall {
	return &Firewall{
		sigs:   sigs,
		reqCh:  make(chan ScanRequest),
		stopCh: make(chan struct{}),
		logger: logger.WithField("prefix", "firewall"),
	}
}

// Run processes scan requests until Stop is called. It is meant to be run in
// its own goroutine.
func (f *Firewall) Run() {
	f.logger.WithField("signatures", len(f.sigs)).Debug("Firewall started")

	for {
		select {
		case req := <-f.reqCh:
			req.ReplyCh <- ScanResult{
				Data: req.Data,
				Pass: f.scan(req.Type, req.Data),
			}
		case <-f.stopCh:
			return
		}
	}
}

// Stop terminates the actor.
func (f *Firewall) Stop() {
	close(f.stopCh)
}

// Scan submits a request and waits for the verdict.
func (f *Firewall) Scan(scanType ScanType, data []byte) bool {
	replyCh := make(chan ScanResult, 1)

	select {
	case f.reqCh <- ScanRequest{Type: scanType, Data: data, ReplyCh: replyCh}:
	case <-f.stopCh:
		return false
	}

	res := <-replyCh

	return res.Pass
}

// scan applies the verdict rules: blocks pass, transactions pass unless a
// signature matches their data, anything else fails closed.
func (f *Firewall) scan(scanType ScanType, data []byte) bool {
	switch scanType {
	case ScanBlock:
		return true
	case ScanTx:
		infected, sig := IsInfected(data, f.sigs)
		if infected {
			f.logger.WithFields(logrus.Fields{
				"signature": string(sig),
				"size":      len(data),
			}).Info("Transaction data matched a firewall signature")
			return false
		}
		return true
	default:
		f.logger.WithField("type", scanType).Warn("Unknown scan type")
		return false
	}
}
