package identity

import (
	"fmt"
	"os"
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"
)

// DropPrivileges narrows a setuid/setgid doorman binary down to its
// effective identity before any path under the rundir is touched. The
// real id stays in the saved set so the engine can still map it into
// containers. A non-setuid install is a no-op.
func DropPrivileges() error {
	uid := unix.Getuid()
	euid := unix.Geteuid()

	if euid != uid {
		if err := unix.Setresuid(euid, euid, uid); err != nil {
			return fmt.Errorf("couldn't change user ID to %d: %w", euid, err)
		}

		pwent, err := user.LookupId(strconv.Itoa(uid))
		if err != nil {
			return fmt.Errorf("couldn't look up setuid user ID %d: %w", uid, err)
		}

		os.Setenv("LOGNAME", pwent.Username)
		os.Setenv("USER", pwent.Username)
		os.Setenv("HOME", pwent.HomeDir)
		os.Unsetenv("XDG_RUNTIME_DIR")
		os.Unsetenv("DBUS_SESSION_BUS_ADDRESS")
	}

	gid := unix.Getgid()
	egid := unix.Getegid()

	if egid != gid {
		if err := unix.Setresgid(egid, egid, gid); err != nil {
			return fmt.Errorf("couldn't change group ID to %d: %w", egid, err)
		}
	}

	return nil
}
