package firewall

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Signature is a binary pattern the firewall screens payloads against.
type Signature []byte

// LoadSignatures reads every *.sig file under dir. Each line of a signature
// file is one pattern: either a plain string, or a hex string prefixed with
// "0x" for binary patterns. Blank lines and lines starting with '#' are
// skipped. A missing directory yields an empty set, which accepts
// everything.
func LoadSignatures(dir string) ([]Signature, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sig"))
	if err != nil {
		return nil, errors.Wrap(err, "listing signature files")
	}

	sigs := []Signature{}

	for _, file := range files {
		buf, err := ioutil.ReadFile(file)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "reading signature file %s", file)
		}

		scanner := bufio.NewScanner(bytes.NewReader(buf))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			if strings.HasPrefix(line, "0x") {
				raw, err := hex.DecodeString(line[2:])
				if err != nil {
					return nil, errors.Wrapf(err, "decoding hex pattern in %s", file)
				}
				sigs = append(sigs, Signature(raw))
				continue
			}

			sigs = append(sigs, Signature(line))
		}
	}

	return sigs, nil
}

// IsInfected reports whether any signature occurs in data, and which one
// matched first. Empty patterns never match.
func IsInfected(data []byte, sigs []Signature) (bool, Signature) {
	for _, sig := range sigs {
		if len(sig) == 0 {
			continue
		}
		if bytes.Contains(data, sig) {
			return true, sig
		}
	}
	return false, nil
}
