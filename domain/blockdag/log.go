package blockdag

import (
	"github.com/kaspanet/bluedag/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BDAG")
