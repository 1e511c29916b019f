package transid

import "github.com/datatrails/go-datatrails-common/logger"

// log is the package's lifecycle logger. A Generator is typically
// constructed once at process startup, before any request-scoped logger
// exists, so this defaults to a no-op and Init lets a host process plug
// in a real one.
var log logger.Logger

func init() {
	logger.New("NOOP")
	log = logger.Sugar
}

// Init sets the logger used to report allocator overload.
func Init(l logger.Logger) {
	log = l
}
