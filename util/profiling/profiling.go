package profiling

import (
	"os"
	"runtime/pprof"

	"github.com/pkg/errors"

	"github.com/kaspanet/bluedag/infrastructure/logger"
)

// StartCPUProfile writes a CPU profile to path until the returned stop
// function is called.
func StartCPUProfile(path string, log *logger.Logger) (stop func(), err error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create CPU profile %s", path)
	}
	err = pprof.StartCPUProfile(file)
	if err != nil {
		file.Close()
		return nil, errors.Wrapf(err, "failed to start CPU profile")
	}
	log.Infof("Writing CPU profile to %s", path)
	return func() {
		pprof.StopCPUProfile()
		err := file.Close()
		if err != nil {
			log.Errorf("Failed to close CPU profile %s: %s", path, err)
		}
	}, nil
}
