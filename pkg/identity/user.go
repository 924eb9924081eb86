// Package identity resolves the calling user and, for sysops, arbitrary
// target identities to run doors as.
package identity

import (
	"fmt"
	"os"
	"os/user"
	"strconv"

	"github.com/mirkobrombin/doorman/pkg/logger"
)

// User is the identity a door session runs as. DisplayName is what the
// door shows on its "who's online" screens; it comes from the gecos
// field when present.
type User struct {
	UID         int    `json:"uid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

func fromPwent(u *user.User) (User, error) {
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return User{}, fmt.Errorf("couldn't parse uid %q: %w", u.Uid, err)
	}

	displayName := u.Name
	if displayName == "" {
		displayName = u.Username
	}

	return User{
		UID:         uid,
		Username:    u.Username,
		DisplayName: displayName,
	}, nil
}

// FromUID looks up a user by numeric id.
func FromUID(uid int) (User, error) {
	pwent, err := user.LookupId(strconv.Itoa(uid))
	if err != nil {
		return User{}, fmt.Errorf("couldn't look up user ID %d: %w", uid, err)
	}
	return fromPwent(pwent)
}

// FromUsername looks up a user by name.
func FromUsername(username string) (User, error) {
	pwent, err := user.Lookup(username)
	if err != nil {
		return User{}, fmt.Errorf("couldn't look up username %q: %w", username, err)
	}
	return fromPwent(pwent)
}

// Calling resolves the identity that invoked doorman. When running
// under sudo or doas the original caller is used, not root.
func Calling() (User, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		logger.Debugf("using username %q from SUDO_USER", sudoUser)
		return FromUsername(sudoUser)
	}
	if doasUser := os.Getenv("DOAS_USER"); doasUser != "" {
		logger.Debugf("using username %q from DOAS_USER", doasUser)
		return FromUsername(doasUser)
	}

	logger.Debugf("did not detect sudo or doas, using current uid")
	return FromUID(os.Getuid())
}

// SwitchSpec selects a target identity for sysop-initiated switching.
type SwitchSpec struct {
	Username    string
	UID         *int
	DisplayName string
}

// Switch resolves spec against the passwd database, starting from
// current. Supplying both a uid and a username builds a synthetic
// identity without a passwd lookup, so sysops can impersonate users
// that only exist inside the BBS.
func Switch(current User, spec SwitchSpec) (User, error) {
	target := current

	if spec.UID != nil && spec.Username != "" {
		target = User{
			UID:         *spec.UID,
			Username:    spec.Username,
			DisplayName: spec.Username,
		}
		if spec.DisplayName != "" {
			target.DisplayName = spec.DisplayName
		}
		return target, nil
	}

	var err error
	if spec.UID != nil {
		target, err = FromUID(*spec.UID)
		if err != nil {
			return User{}, err
		}
	} else if spec.Username != "" {
		target, err = FromUsername(spec.Username)
		if err != nil {
			return User{}, err
		}
	}

	if spec.DisplayName != "" {
		target.DisplayName = spec.DisplayName
	}

	return target, nil
}
