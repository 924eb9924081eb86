package doorman

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mirkobrombin/doorman/pkg/types"
)

// dockerCreatedLayout is the fixed textual timestamp the generic engine
// emits in its ps listing.
const dockerCreatedLayout = "2006-01-02 15:04:05 -0700 MST"

type podmanPS struct {
	ID      string            `json:"Id"`
	Created int64             `json:"Created"`
	Labels  map[string]string `json:"Labels"`
}

type dockerPS struct {
	ID        string `json:"ID"`
	CreatedAt string `json:"CreatedAt"`
	Labels    string `json:"Labels"`
}

// Who reconstructs the active session list from the engine's running
// containers. doorFilter narrows the listing to one door when non-empty.
func (d *Doorman) Who(doorFilter string) ([]types.Session, error) {
	filter := "label=doorman.door"
	if doorFilter != "" {
		filter = fmt.Sprintf("label=doorman.door=%s", doorFilter)
	}

	ps := d.command("ps", "--format=json", "--filter", filter)
	out, err := ps.Output()
	if err != nil {
		return nil, fmt.Errorf("'%s ps' failed: %w", d.Engine.Name(), err)
	}

	sessions := parsePS(out)

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Door != sessions[j].Door {
			return sessions[i].Door < sessions[j].Door
		}
		return sessions[i].Node < sessions[j].Node
	})

	return sessions, nil
}

// parsePS normalizes either engine's listing shape. The structured
// podman shape is tried first; anything else falls back to the
// line-oriented generic shape.
func parsePS(out []byte) []types.Session {
	if sessions, err := parsePodman(out); err == nil {
		return sessions
	}
	return parseDocker(out)
}

func parsePodman(out []byte) ([]types.Session, error) {
	var containers []podmanPS
	if err := json.Unmarshal(out, &containers); err != nil {
		return nil, err
	}

	sessions := []types.Session{}
	for _, container := range containers {
		session, ok := sessionFromLabels(container.ID, container.Labels)
		if !ok {
			continue
		}
		session.Since = time.Unix(container.Created, 0).UTC()
		sessions = append(sessions, session)
	}

	return sessions, nil
}

func parseDocker(out []byte) []types.Session {
	sessions := []types.Session{}

	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		var container dockerPS
		if err := json.Unmarshal([]byte(line), &container); err != nil {
			continue
		}

		labels := map[string]string{}
		for _, label := range strings.Split(container.Labels, ",") {
			key, value, _ := strings.Cut(label, "=")
			labels[key] = value
		}

		session, ok := sessionFromLabels(container.ID, labels)
		if !ok {
			continue
		}

		since, err := time.Parse(dockerCreatedLayout, container.CreatedAt)
		if err != nil {
			continue
		}
		session.Since = since.UTC()

		sessions = append(sessions, session)
	}

	return sessions
}

// sessionFromLabels builds a session record from container labels.
// Containers missing the user or door label are foreign and are
// dropped, not reported.
func sessionFromLabels(id string, labels map[string]string) (types.Session, bool) {
	user, hasUser := labels["doorman.user"]
	door, hasDoor := labels["doorman.door"]
	if !hasUser || !hasDoor {
		return types.Session{}, false
	}

	session := types.Session{
		ContainerID: id,
		User:        user,
		Door:        door,
		Command:     labels["doorman.command"],
		RunDir:      labels["doorman.rundir"],
	}

	if nodeLabel, ok := labels["doorman.node"]; ok {
		node, err := strconv.Atoi(nodeLabel)
		if err != nil {
			return types.Session{}, false
		}
		session.Node = node
	}

	return session, true
}
