package doorman

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mirkobrombin/doorman/pkg/dos"
	"github.com/mirkobrombin/doorman/pkg/engine"
	"github.com/mirkobrombin/doorman/pkg/identity"
	"github.com/mirkobrombin/doorman/pkg/lockfile"
	"github.com/mirkobrombin/doorman/pkg/logger"
	"github.com/mirkobrombin/doorman/pkg/types"
)

// LaunchOptions are the per-invocation knobs for a play session.
type LaunchOptions struct {
	// Raw disables ANSI+CP437 translation on the guest side.
	Raw bool
}

// LaunchVars are the template inputs for the staged DOS files and the
// door's launch_commands.
type LaunchVars struct {
	User        identity.User
	Node        int
	CurrentTime string
}

// BatchCommands fills the DOORMAN.BAT template.
type BatchCommands struct {
	Commands string
}

// Launch runs one interactive play session on door.
//
// The door lock is taken shared so any number of players can coexist;
// maintenance takes it exclusively and turns new players away. The node
// lock is released as soon as the container has started: it protects
// slot assignment, not container lifetime, so a crashed front-end can
// never leave a node wedged. The running container itself, found via
// its labels, is the liveness signal after that point.
func (d *Doorman) Launch(door types.Door, opts LaunchOptions) error {
	doorLock, err := lockfile.Open(d.doorLockPath(door.Name))
	if err != nil {
		return fmt.Errorf("while locking door: %w", err)
	}
	defer doorLock.Close()

	locked, err := doorLock.TryShared()
	if err != nil {
		return fmt.Errorf("while locking door: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: sorry, %s is currently undergoing maintenance", ErrDoorBusy, door.Name)
	}

	node, nodeLock, err := d.claimNode(door)
	if err != nil {
		return err
	}
	defer nodeLock.Close()

	workspace, err := d.stageWorkspace(fmt.Sprintf("%s.%d", door.Name, node))
	if err != nil {
		return err
	}

	vars := LaunchVars{
		User:        d.User,
		Node:        node,
		CurrentTime: time.Now().Format("15:04"),
	}

	templates := dos.New()

	if err := templates.WriteDOS("door.sys", workspace, vars); err != nil {
		return err
	}

	commands, err := templates.RenderString(door.Options.LaunchCommands, vars)
	if err != nil {
		return fmt.Errorf("couldn't generate batch commands for %s: %w", door.Name, err)
	}
	if err := templates.WriteDOS("doorman.bat", workspace, BatchCommands{Commands: commands}); err != nil {
		return err
	}

	raw := "0"
	if opts.Raw {
		raw = "1"
	}

	spec := engine.RunSpec{
		UID: d.UID,
		GID: d.GID,
		Volumes: map[string]string{
			workspace:              "/mnt/doorman",
			door.Options.DoorPath:  "/mnt/door",
			doorLock.Path():        "/mnt/door.lock",
			nodeLock.Path():        "/mnt/node.lock",
		},
		Env: map[string]string{
			"TERM":        termType(),
			"DOORMAN_RAW": raw,
		},
		Labels: map[string]string{
			"doorman.door":    door.Name,
			"doorman.node":    fmt.Sprintf("%d", node),
			"doorman.user":    d.User.Username,
			"doorman.rundir":  workspace,
			"doorman.session": uuid.New().String(),
		},
	}

	args := append(d.Engine.RunArgs(spec), "-d", d.Image, "wait-for-launch.sh")

	var stdout bytes.Buffer
	run := d.command("run", args...)
	run.Stdout = &stdout
	run.Stderr = os.Stderr

	if err := run.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: starting container for %s failed with exit code %d",
				ErrLaunchFailed, door.Name, exitErr.ExitCode())
		}
		return fmt.Errorf("%w: while starting container for door %q: %v", ErrLaunchFailed, door.Name, err)
	}

	containerID := strings.TrimSpace(stdout.String())
	if containerID == "" {
		return fmt.Errorf("%w: container for %s started without an id", ErrLaunchFailed, door.Name)
	}
	logger.Debugf("container ID: %s", containerID)

	// The slot is reusable from here on; see the doc comment above.
	if err := nodeLock.Unlock(); err != nil {
		return err
	}

	attach := d.command("exec", "-ti", containerID, "launch.sh")
	attach.Stdin = os.Stdin
	attach.Stdout = os.Stdout
	attach.Stderr = os.Stderr

	if err := attach.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("while starting client: %w", err)
		}
	}

	return nil
}

// claimNode scans node indexes in ascending order and exclusively locks
// the first free one. Lower-numbered nodes are always preferred.
func (d *Doorman) claimNode(door types.Door) (int, *lockfile.Lock, error) {
	for node := 1; node <= door.Options.MaxNodes; node++ {
		lock, err := lockfile.Open(d.nodeLockPath(door.Name, node))
		if err != nil {
			return 0, nil, fmt.Errorf("failed to lock node %d for door %q: %w", node, door.Name, err)
		}

		locked, err := lock.TryExclusive()
		if err != nil {
			lock.Close()
			return 0, nil, fmt.Errorf("failed to lock node %d for door %q: %w", node, door.Name, err)
		}
		if locked {
			return node, lock, nil
		}
		lock.Close()
	}

	return 0, nil, fmt.Errorf("%w: all nodes for %s are busy", ErrAllNodesBusy, door.Name)
}

func (d *Doorman) doorLockPath(door string) string {
	return filepath.Join(d.RunDir, door+".lock")
}

func (d *Doorman) nodeLockPath(door string, node int) string {
	return filepath.Join(d.RunDir, fmt.Sprintf("%s.%d.lock", door, node))
}
