package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRender(t *testing.T) {
	out, err := execute(t, "", "render", "--rows", "4", "--cols", "6", "--seed", "3", "-m", "50", "--strategy", "cycle")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2*4+2)
	assert.Equal(t, "+"+strings.Repeat("---+", 6), lines[0])
	assert.Contains(t, out, "@")
	assert.Contains(t, lines[len(lines)-1], "seed 3, cycle strategy, 50 mutations")

	again, err := execute(t, "", "render", "--rows", "4", "--cols", "6", "--seed", "3", "-m", "50", "--strategy", "cycle")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestRenderSingleRow(t *testing.T) {
	out, err := execute(t, "", "render", "--rows", "1", "--cols", "5", "--seed", "1", "-m", "10", "--strategy", "shore")
	require.NoError(t, err)
	assert.Contains(t, out, "0 mutations")
}

func TestRenderRejectsUnknownStrategy(t *testing.T) {
	_, err := execute(t, "", "render", "--strategy", "spiral", "-m", "0")
	assert.Error(t, err)
}

func TestHashKey(t *testing.T) {
	const key = "velvet-Compass-7731"

	out, err := execute(t, key+"\n", "hash-key")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)))

	_, err = execute(t, "", "hash-key", "password")
	assert.Error(t, err)
}
