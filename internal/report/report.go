// Package report defines the diff-run report types shared by the CLI and
// the history store. It is a types-only layer: everything else imports
// report; report imports only the value model.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/indutny/sneequals/value"
)

// DomainDocument is the domain prefix for document fingerprints. The
// version suffix enables future algorithm migration.
const DomainDocument = "sneequals/document/v1"

// Run is one recorded diff run: which documents were compared, which reads
// the derivation performed, and what the comparator decided.
//
// Note that a Run persists the *outcome* of a tracking session, never the
// touch ledger itself; ledgers live and die with their session.
type Run struct {
	// ID is a random UUID assigned when the run is recorded.
	ID string

	// CreatedAt is the wall-clock recording time (UTC).
	CreatedAt time.Time

	// OldPath and NewPath are the document files as given on the command
	// line.
	OldPath string
	NewPath string

	// OldFingerprint and NewFingerprint are content fingerprints of the
	// two documents.
	OldFingerprint string
	NewFingerprint string

	// ReadSpecs are the raw read-spec strings the derivation executed.
	ReadSpecs []string

	// Changed is the comparator's verdict.
	Changed bool

	// AffectedPaths is the recorded access report for the old document.
	AffectedPaths []string
}

// Fingerprint computes the content fingerprint of a document:
// SHA-256(domain + 0x00 + canonical JSON). The null separator prevents
// domain/data boundary ambiguity. Stable across processes given the same
// document content.
func Fingerprint(doc value.Value) (string, error) {
	canonical, err := value.MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainDocument))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MarshalStrings renders a string slice as canonical JSON text for storage.
func MarshalStrings(ss []string) (string, error) {
	arr := value.NewArray()
	for _, s := range ss {
		arr.Append(value.String(s))
	}
	data, err := value.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal strings: %w", err)
	}
	return string(data), nil
}

// UnmarshalStrings parses canonical JSON text produced by MarshalStrings.
func UnmarshalStrings(data string) ([]string, error) {
	var raw []string
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal strings: %w", err)
	}
	if raw == nil {
		raw = []string{}
	}
	return raw, nil
}
