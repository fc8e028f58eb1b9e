package process

import (
	"fmt"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "process"))

// OpenProcessByName opens the first process (lowest PID) whose name is exactly name.
func OpenProcessByName(helper ProcessHelper, name string) (Process, error) {
	processes, err := helper.FindProcessByName(name)
	if err != nil {
		return nil, NotFound(name, err)
	}

	if len(processes) == 0 {
		return nil, NotFound(name, nil)
	}

	proc, err := helper.NewWithPID(processes[0].PID)
	if err != nil {
		return nil, OpenFailed(name, err)
	}
	return proc, nil
}

// WithProcessByName opens the named process, passes it to fn and closes it
// again before returning, whatever fn does. The Process must not be retained
// by fn.
func WithProcessByName(helper ProcessHelper, name string, fn func(Process) error) error {
	proc, err := OpenProcessByName(helper, name)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := proc.Close(); cerr != nil {
			log.Warn(fmt.Sprintf("failed to close process %d (%s): ", proc.GetPID(), name), cerr)
		}
	}()

	return fn(proc)
}
