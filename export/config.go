package export

import "github.com/veraison/go-cose"

// Config controls one export run: where the report and optional snapshot
// land, and whether the report is signed before it is written.
type Config struct {
	// ExportLoggingArrayDataPath names the destination for the text
	// report. A path beginning with "https://" and containing
	// ".blob.core.windows.net" is treated as an Azure Blob destination;
	// anything else is a local filesystem path. Empty disables export.
	ExportLoggingArrayDataPath string

	// Snapshot, when true, additionally writes a CBOR-encoded snapshot of
	// the frozen tables alongside the text report.
	Snapshot bool

	signer        cose.Signer
	keyIdentifier string
}

// Option configures a Config. The functional-options shape mirrors
// massifs.Option: a setter closure that mutates the Config in place.
type Option func(*Config)

// WithAzureContainer sets the export destination to a path inside an
// Azure Blob container; callers otherwise just set
// Config.ExportLoggingArrayDataPath directly for local paths.
func WithAzureContainer(containerURL string) Option {
	return func(c *Config) {
		c.ExportLoggingArrayDataPath = containerURL
	}
}

// WithSigner arranges for the report to be signed with a COSE Sign1
// envelope carrying its digest as payload before it is written. keyIdentifier is
// carried in the envelope's protected header so a verifier can look up the
// matching public key.
func WithSigner(signer cose.Signer, keyIdentifier string) Option {
	return func(c *Config) {
		c.signer = signer
		c.keyIdentifier = keyIdentifier
	}
}

// WithSnapshot toggles whether a CBOR snapshot is written alongside the
// text report.
func WithSnapshot(enabled bool) Option {
	return func(c *Config) {
		c.Snapshot = enabled
	}
}

func newConfig(path string, opts ...Option) *Config {
	c := &Config{ExportLoggingArrayDataPath: path}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
