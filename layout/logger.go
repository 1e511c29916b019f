package layout

import "github.com/datatrails/go-datatrails-common/logger"

// log is the package's lifecycle logger. layout is typically initialized
// long before any request-scoped logger exists, so it defaults to a no-op
// and Init lets a host process plug in a real one.
var log logger.Logger

func init() {
	logger.New("NOOP")
	log = logger.Sugar
}

// Init sets the logger used for registration and finalization lifecycle
// events. Call it once, before registering any layout, from whatever code
// owns process startup.
func Init(l logger.Logger) {
	log = l
}
