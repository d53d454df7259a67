package database

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/CrowderSoup/taskboard/board"
)

// scenario is a sequence of actions replayed through both the projector and
// the store. Ids in payloads are readable names and are turned into UUIDs
// before decoding.
type scenario struct {
	Name  string `yaml:"name"`
	Owner string `yaml:"owner"`
	Steps []step `yaml:"steps"`
	// Outline is the expected final tree.
	Outline string `yaml:"outline"`
}

type step struct {
	Type    board.Kind     `yaml:"type"`
	Payload map[string]any `yaml:"payload"`
	// Reject, when set, is the error code the store must answer with.
	Reject board.ErrorCode `yaml:"reject"`
}

func (s step) action(t *testing.T) board.Action {
	t.Helper()
	payload := make(map[string]any, len(s.Payload))
	for k, v := range s.Payload {
		if str, ok := v.(string); ok && strings.HasSuffix(k, "Id") {
			v = uid(str)
		}
		payload[k] = v
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	a, err := board.Decode(board.Envelope{Type: s.Type, Payload: raw})
	require.NoError(t, err)
	return a
}

func loadScenarios(t *testing.T) []scenario {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	var out []scenario
	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		var sc scenario
		require.NoError(t, yaml.Unmarshal(data, &sc), p)
		if sc.Name == "" {
			sc.Name = strings.TrimSuffix(filepath.Base(p), ".yaml")
		}
		out = append(out, sc)
	}
	return out
}

// TestScenarios_ProjectionMatchesStore checks after every step that the
// optimistic tree equals what a refetch from the store returns.
func TestScenarios_ProjectionMatchesStore(t *testing.T) {
	for _, sc := range loadScenarios(t) {
		t.Run(sc.Name, func(t *testing.T) {
			store, m, _ := newTestMutator(t)
			ctx := context.Background()
			owner := sc.Owner
			if owner == "" {
				owner = alice
			}
			projected := board.Tree{OwnerID: owner, Boards: []board.Board{}}

			for i, st := range sc.Steps {
				a := st.action(t)
				err := m.Apply(ctx, owner, a)
				if st.Reject != "" {
					require.Error(t, err, "step %d (%s)", i, st.Type)
					assert.Equal(t, st.Reject, board.CodeOf(err), "step %d (%s): %v", i, st.Type, err)
					require.Equal(t, projected, board.Project(projected, a),
						"step %d (%s): rejected action changed the projection", i, st.Type)
				} else {
					require.NoError(t, err, "step %d (%s)", i, st.Type)
					projected = board.Project(projected, a)
				}

				stored := loadTree(t, store, owner)
				require.Equal(t, projected, stored.WithoutTimestamps(), "step %d (%s)", i, st.Type)
			}

			if sc.Outline != "" {
				assert.Equal(t, sc.Outline, board.Outline(projected))
			}
		})
	}
}
