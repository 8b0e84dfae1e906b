package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultTolerance is the maximum accepted age of a signed timestamp when the
// caller does not configure one.
const DefaultTolerance = 300 * time.Second

var (
	ErrMalformedSignatureHeader = errors.New("malformed Stripe-Signature header")
	ErrSignatureInvalid         = errors.New("no matching v1 signature")
	ErrTimestampOutOfTolerance  = errors.New("signature timestamp outside of tolerance")
)

type signatureHeader struct {
	timestamp  time.Time
	signatures [][]byte
}

// parseSignatureHeader splits the comma-separated k=v header. The header
// carries one timestamp but may carry several v1 signatures (the provider
// signs with old and new secrets during rotation); schemes other than v1 are
// ignored.
func parseSignatureHeader(header string) (*signatureHeader, error) {
	if header == "" {
		return nil, ErrMalformedSignatureHeader
	}

	sh := &signatureHeader{}

	for _, pair := range strings.Split(header, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			return nil, ErrMalformedSignatureHeader
		}

		switch parts[0] {
		case "t":
			unix, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return nil, ErrMalformedSignatureHeader
			}
			sh.timestamp = time.Unix(unix, 0)
		case "v1":
			sig, err := hex.DecodeString(parts[1])
			if err != nil {
				continue
			}
			sh.signatures = append(sh.signatures, sig)
		}
	}

	if sh.timestamp.IsZero() || len(sh.signatures) == 0 {
		return nil, ErrMalformedSignatureHeader
	}

	return sh, nil
}

func computeSignature(t time.Time, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(t.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

// VerifySignature authenticates the exact request body bytes against the
// Stripe-Signature header. It passes iff at least one v1 signature matches
// the HMAC-SHA256 of "{t}.{body}" in constant time and the signed timestamp
// is within the tolerance window in either direction.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration) error {
	sh, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	expected := computeSignature(sh.timestamp, payload, secret)
	matched := false
	for _, sig := range sh.signatures {
		if hmac.Equal(sig, expected) {
			matched = true
		}
	}
	if !matched {
		return ErrSignatureInvalid
	}

	if age := time.Since(sh.timestamp); age > tolerance || age < -tolerance {
		return ErrTimestampOutOfTolerance
	}

	return nil
}

// ConstructEvent authenticates the payload and decodes it into a typed
// event. A non-positive tolerance selects the default window.
func ConstructEvent(payload []byte, header, secret string, tolerance time.Duration) (*Event, error) {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	if err := VerifySignature(payload, header, secret, tolerance); err != nil {
		return nil, err
	}

	return ParseEvent(payload)
}
