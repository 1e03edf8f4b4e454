package definition_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpedic/go-que/internal/definition"
	"github.com/gpedic/go-que/internal/targets"
	"github.com/gpedic/go-que/pkg/que"
)

const greeting = `
name: greeting
steps:
  - put: {name: who, value: world}
  - run: {name: user, target: env, method: Lookup, args: [USER]}
  - inspect: {only: [who]}
  - run: {name: message, target: text, method: Format, args: ["hello %v from %v", who, user]}
`

func testTargets() map[string]any {
	builtin := targets.Builtin()
	builtin["env"] = &targets.Env{LookupEnv: func(key string) (string, bool) {
		if key == "USER" {
			return "gopher", true
		}

		return "", false
	}}

	return builtin
}

func TestDecode(t *testing.T) {
	t.Parallel()

	def, err := definition.Decode(strings.NewReader(greeting))
	require.NoError(t, err)

	assert.Equal(t, "greeting", def.Name)
	require.Len(t, def.Steps, 4)
	assert.Equal(t, &definition.PutStep{Name: "who", Value: "world"}, def.Steps[0].Put)
	assert.Equal(t, &definition.RunStep{Name: "user", Target: "env", Method: "Lookup", Args: []any{"USER"}}, def.Steps[1].Run)
	assert.Equal(t, []string{"who"}, def.Steps[2].Inspect.Only)
	assert.Nil(t, def.Steps[2].Run)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		target  error
		message string
	}{
		{
			name:    "unknown field",
			input:   "name: x\nsteps:\n  - put: {name: a, value: 1, extra: 2}\n",
			message: "unable to decode definition",
		},
		{
			name:    "no steps",
			input:   "name: x\n",
			message: "invalid definition",
		},
		{
			name:    "missing name",
			input:   "steps:\n  - put: {name: a, value: 1}\n",
			message: "invalid definition",
		},
		{
			name:    "missing method",
			input:   "name: x\nsteps:\n  - run: {name: a, target: text}\n",
			message: "Method",
		},
		{
			name:   "two operations",
			input:  "name: x\nsteps:\n  - put: {name: a, value: 1}\n    error: {name: b, message: no}\n",
			target: definition.ErrAmbiguousStep,
		},
		{
			name:   "no operation",
			input:  "name: x\nsteps:\n  - {}\n",
			target: definition.ErrAmbiguousStep,
		},
		{
			name:    "duplicate name",
			input:   "name: x\nsteps:\n  - put: {name: a, value: 1}\n  - inspect: {}\n  - error: {name: a, message: no}\n",
			target:  definition.ErrDuplicateName,
			message: `step 2: "a" first defined at step 0`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := definition.Decode(strings.NewReader(tt.input))
			require.Error(t, err)

			if tt.target != nil {
				require.ErrorIs(t, err, tt.target)
			}

			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestDecodeFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(greeting), 0o600))

	def, err := definition.DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "greeting", def.Name)

	_, err = definition.DecodeFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuildAndExec(t *testing.T) {
	t.Parallel()

	def, err := definition.Decode(strings.NewReader(greeting))
	require.NoError(t, err)

	pipe, err := definition.Build(def, testTargets())
	require.NoError(t, err)
	assert.Equal(t, 4, pipe.Len())
	assert.Equal(t, []string{"who", "user", "message"}, pipe.Names())

	changes, err := pipe.Exec()
	require.NoError(t, err)
	assert.Equal(t, que.Changes[string, any]{
		"who":     "world",
		"user":    "gopher",
		"message": "hello world from gopher",
	}, changes)
}

func TestBuildErrorStep(t *testing.T) {
	t.Parallel()

	def, err := definition.Decode(strings.NewReader(
		"name: x\nsteps:\n  - put: {name: a, value: 1}\n  - error: {name: blocked, message: not allowed}\n",
	))
	require.NoError(t, err)

	pipe, err := definition.Build(def, testTargets())
	require.NoError(t, err)

	_, err = pipe.Exec()

	var stepErr *que.StepError[string, any]
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "blocked", stepErr.Step)
	assert.True(t, stepErr.Prevalidated)
	assert.EqualError(t, stepErr.Err, "not allowed")
	assert.Empty(t, stepErr.Changes)
}

func TestBuildUnknownTarget(t *testing.T) {
	t.Parallel()

	def := &definition.Definition{Name: "x", Steps: []definition.Step{
		{Run: &definition.RunStep{Name: "a", Target: "missing", Method: "Lookup"}},
	}}

	_, err := definition.Build(def, testTargets())
	require.ErrorIs(t, err, definition.ErrUnknownTarget)

	def.Steps[0].Run.Target = "env"
	def.Steps[0].Run.Method = "Missing"

	_, err = definition.Build(def, testTargets())
	require.ErrorIs(t, err, definition.ErrUnknownMethod)
	assert.EqualError(t, err, "step 0: env.Missing: unknown method")
}

func TestBuildValidates(t *testing.T) {
	t.Parallel()

	def := &definition.Definition{Name: "x", Steps: []definition.Step{
		{Put: &definition.PutStep{Name: "a"}},
		{Put: &definition.PutStep{Name: "a"}},
	}}

	_, err := definition.Build(def, testTargets())
	require.ErrorIs(t, err, definition.ErrDuplicateName)
}
