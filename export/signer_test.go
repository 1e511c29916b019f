package export

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/veraison/go-cose"
)

func TestSignReportProducesVerifiableEnvelope(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	signer, err := cose.NewSigner(cose.AlgorithmES256, key)
	require.NoError(t, err)

	report := []byte("Sources:\n\n100x Get\n")
	envelope, err := signReport(signer, "test-key", report)
	require.NoError(t, err)
	require.NotEmpty(t, envelope)

	var msg cose.Sign1Message
	require.NoError(t, msg.UnmarshalCBOR(envelope))

	verifier, err := cose.NewVerifier(cose.AlgorithmES256, &key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, msg.Verify(nil, verifier))
}
