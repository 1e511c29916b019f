package export

import (
	"crypto/rand"
	"crypto/sha256"

	"github.com/veraison/go-cose"
)

// signReport produces a COSE Sign1 envelope whose payload is report's
// SHA-256 digest, the same "sign a content digest, not the content" shape
// RootSigner.Sign1 uses for log state commitments: the report itself can
// be arbitrarily large, but the envelope only needs to commit to it.
func signReport(signer cose.Signer, keyIdentifier string, report []byte) ([]byte, error) {
	digest := sha256.Sum256(report)

	headers := cose.Headers{
		Protected: cose.ProtectedHeader{
			cose.HeaderLabelKeyID: []byte(keyIdentifier),
		},
	}
	msg := cose.Sign1Message{
		Headers: headers,
		Payload: digest[:],
	}
	if err := msg.Sign(rand.Reader, nil, signer); err != nil {
		return nil, err
	}
	return msg.MarshalCBOR()
}
