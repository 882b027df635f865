package main

import (
	"bytes"
	"errors"

	"cfclient/mapcmd"
)

// splitCommand separates the command name of a server message from its
// data. The name ends at the first space, which is not part of the data.
func splitCommand(m []byte) (string, []byte) {
	if i := bytes.IndexByte(m, ' '); i >= 0 {
		return string(m[:i]), m[i+1:]
	}
	return string(m), nil
}

// dispatchMessage routes a raw server message to the map session. Commands
// the session does not handle are skipped.
func dispatchMessage(sess *mapcmd.Session, m []byte) error {
	if len(m) == 0 {
		return nil
	}
	cmd, data := splitCommand(m)
	err := sess.Handle(cmd, data)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mapcmd.ErrUnknownCommand):
		logDebug("skip command %q len %d", cmd, len(data))
		return err
	}
	logError("%s: %v", cmd, err)
	logDebugPacket(cmd, data)
	return err
}
