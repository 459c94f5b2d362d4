package runner

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

func TestExec_MissingTool(t *testing.T) {
	_, err := Exec{}.Run(context.Background(), "reqsift-no-such-tool")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrToolNotFound)
}

func TestExec_Stdout(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not available")
	}

	out, err := Exec{}.Run(context.Background(), "echo", "hello")

	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))
}

func TestExec_Failure(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}

	_, err := Exec{}.Run(context.Background(), "false")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "false")
}

func TestCheckAvailable(t *testing.T) {
	missing := CheckAvailable("reqsift-no-such-tool-a", "reqsift-no-such-tool-b")
	assert.Equal(t, []string{"reqsift-no-such-tool-a", "reqsift-no-such-tool-b"}, missing)
	assert.Empty(t, CheckAvailable())
}
