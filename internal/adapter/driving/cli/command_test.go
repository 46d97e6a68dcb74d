package cli_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/residentwelcome/internal/adapter/driving/cli"
	"github.com/ericfisherdev/residentwelcome/internal/domain/model"
)

// execute runs the command with args and returns every resident passed to run.
func execute(t *testing.T, stdin string, args ...string) ([]model.NewResident, error) {
	t.Helper()

	var got []model.NewResident
	cmd := cli.NewCommand(func(_ context.Context, r model.NewResident) error {
		got = append(got, r)
		return nil
	})
	if args == nil {
		// A nil slice makes cobra fall back to os.Args.
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&strings.Builder{})
	cmd.SetErr(&strings.Builder{})

	err := cmd.ExecuteContext(context.Background())
	return got, err
}

func TestCommand_Flags(t *testing.T) {
	got, err := execute(t, "",
		"--full-name", "Real Fun Guy",
		"--email", "erock0898@gmail.com",
		"--address", "111 Main St",
	)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.NewResident{
		FullName: "Real Fun Guy",
		Email:    "erock0898@gmail.com",
		Address:  "111 Main St",
	}, got[0])
}

func TestCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resident.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"full_name":"Real Fun Guy","email":"erock0898@gmail.com","address":"111 Main St"}`), 0o600))

	got, err := execute(t, "", "--file", path)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Real Fun Guy", got[0].FullName)
	assert.Equal(t, "111 Main St", got[0].Address)
}

func TestCommand_StdinWithFlagOverride(t *testing.T) {
	got, err := execute(t,
		`{"full_name":"Real Fun Guy","email":"old@example.com","address":"111 Main St"}`,
		"-f", "-", "--email", "erock0898@gmail.com",
	)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "erock0898@gmail.com", got[0].Email)
	assert.Equal(t, "Real Fun Guy", got[0].FullName)
}

func TestCommand_NoResident(t *testing.T) {
	got, err := execute(t, "")

	assert.ErrorIs(t, err, cli.ErrNoResident)
	assert.Empty(t, got)
}

func TestCommand_RejectsUnknownFields(t *testing.T) {
	_, err := execute(t, `{"fullname":"typo"}`, "--file", "-")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode resident")
}

func TestCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "", "--file", filepath.Join(t.TempDir(), "nope.json"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "open resident file")
}

func TestCommand_RejectsPositionalArgs(t *testing.T) {
	_, err := execute(t, "", "Real Fun Guy")
	assert.Error(t, err)
}

func TestCommand_PropagatesRunError(t *testing.T) {
	runErr := errors.New("insert failed")
	cmd := cli.NewCommand(func(context.Context, model.NewResident) error { return runErr })
	cmd.SetArgs([]string{"--email", "a@example.com"})

	err := cmd.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, runErr)
}
