package doorman

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/mirkobrombin/doorman/pkg/dos"
	"github.com/mirkobrombin/doorman/pkg/engine"
	"github.com/mirkobrombin/doorman/pkg/lockfile"
	"github.com/mirkobrombin/doorman/pkg/types"
)

// Configure runs the door's configuration program. Sysops only.
func (d *Doorman) Configure(door types.Door, nowait bool) error {
	return d.sysopCommand(door, "configure", door.Options.ConfigureCommands, nowait)
}

// Nightly runs the door's nightly maintenance. Sysops only.
func (d *Doorman) Nightly(door types.Door, nowait bool) error {
	return d.sysopCommand(door, "nightly", door.Options.NightlyCommands, nowait)
}

// sysopCommand runs a maintenance container with the door locked
// exclusively, so no play session can overlap it. The lock is dropped
// as soon as the container has been spawned: from then on the
// bind-mounted door.lock path inside the container is what keeps the
// door logically busy.
func (d *Doorman) sysopCommand(door types.Door, command string, template string, nowait bool) error {
	if !d.Sysop {
		return fmt.Errorf("%w: this command is only for sysops", ErrPermissionDenied)
	}
	if template == "" {
		return fmt.Errorf("%w: no %s command configured for %s", ErrNotConfigured, command, door.Name)
	}

	doorLock, err := lockfile.Open(d.doorLockPath(door.Name))
	if err != nil {
		return err
	}
	defer doorLock.Close()

	if nowait {
		locked, err := doorLock.TryExclusive()
		if err != nil {
			return err
		}
		if !locked {
			return fmt.Errorf("%w: sorry, I couldn't lock the door %q exclusively", ErrDoorBusy, door.Name)
		}
	} else {
		if err := doorLock.Exclusive(); err != nil {
			return err
		}
	}

	workspace, err := d.stageWorkspace(door.Name + ".sysop")
	if err != nil {
		return err
	}

	// Maintenance commands come from the config verbatim; there is no
	// user or node to template in.
	if err := dos.New().WriteDOS("doorman.bat", workspace, BatchCommands{Commands: template}); err != nil {
		return err
	}

	spec := engine.RunSpec{
		UID: d.UID,
		GID: d.GID,
		Volumes: map[string]string{
			workspace:             "/mnt/doorman",
			door.Options.DoorPath: "/mnt/door",
			doorLock.Path():       "/mnt/door.lock",
		},
		Env: map[string]string{
			"TERM": termType(),
		},
		Labels: map[string]string{
			"doorman.door":    door.Name,
			"doorman.command": command,
			"doorman.user":    d.User.Username,
			"doorman.rundir":  workspace,
		},
	}

	args := append(d.Engine.RunArgs(spec), "-ti", d.Image, command+".sh")

	run := d.command("run", args...)
	run.Stdin = os.Stdin
	run.Stdout = os.Stdout
	run.Stderr = os.Stderr

	if err := run.Start(); err != nil {
		return fmt.Errorf("while spawning container for door %q: %w", door.Name, err)
	}

	if err := doorLock.Unlock(); err != nil {
		return err
	}

	if err := run.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("while waiting for container for door %q: %w", door.Name, err)
		}
	}

	return nil
}
