package firewall

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/weavenet/weaver/src/common"
)

func testFirewall(t *testing.T, sigs []Signature) *Firewall {
	f := NewFirewall(sigs, common.NewTestEntry(t, logrus.DebugLevel))
	go f.Run()
	t.Cleanup(f.Stop)
	return f
}

func TestScanTx(t *testing.T) {
	f := testFirewall(t, []Signature{Signature("badstuff")})

	if f.Scan(ScanTx, []byte("badstuff")) {
		t.Fatalf("matching data should not pass")
	}

	if !f.Scan(ScanTx, []byte("goodstuff")) {
		t.Fatalf("clean data should pass")
	}

	// Matches anywhere inside the payload
	if f.Scan(ScanTx, []byte("prefix badstuff suffix")) {
		t.Fatalf("embedded match should not pass")
	}
}

func TestScanBlock(t *testing.T) {
	f := testFirewall(t, []Signature{Signature("badstuff")})

	if !f.Scan(ScanBlock, []byte("badstuff")) {
		t.Fatalf("blocks should always pass")
	}
}

func TestScanUnknownTypeFailsClosed(t *testing.T) {
	f := testFirewall(t, nil)

	if f.Scan(ScanType(42), []byte("anything")) {
		t.Fatalf("unknown scan types should fail closed")
	}
}

func TestScanReplyEchoesData(t *testing.T) {
	f := testFirewall(t, nil)

	replyCh := make(chan ScanResult, 1)

	f.reqCh <- ScanRequest{Type: ScanTx, Data: []byte("payload"), ReplyCh: replyCh}

	res := <-replyCh

	if string(res.Data) != "payload" {
		t.Fatalf("reply should echo the scanned payload")
	}
	if !res.Pass {
		t.Fatalf("empty signature table should pass everything")
	}
}

func TestLoadSignatures(t *testing.T) {
	dir, err := ioutil.TempDir("", "weaver")
	if err != nil {
		t.Fatalf("err: %v ", err)
	}
	defer os.RemoveAll(dir)

	content := "# comment\nbadstuff\n0xdeadbeef\n\n"
	if err := ioutil.WriteFile(filepath.Join(dir, "malware.sig"), []byte(content), 0644); err != nil {
		t.Fatalf("err: %v", err)
	}
	// non-.sig files are ignored
	if err := ioutil.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignoreme"), 0644); err != nil {
		t.Fatalf("err: %v", err)
	}

	sigs, err := LoadSignatures(dir)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if len(sigs) != 2 {
		t.Fatalf("expected 2 signatures, got %d", len(sigs))
	}

	if infected, _ := IsInfected([]byte("xx badstuff xx"), sigs); !infected {
		t.Fatalf("plain pattern should match")
	}

	if infected, sig := IsInfected([]byte{0x00, 0xde, 0xad, 0xbe, 0xef, 0x00}, sigs); !infected {
		t.Fatalf("hex pattern should match")
	} else if len(sig) != 4 {
		t.Fatalf("hex pattern should decode to 4 bytes")
	}
}
