// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/rbcm/internal/api"
	"github.com/katalvlaran/rbcm/partition"
)

const fuseDoc = `
predictions:
  - [[5, 7]]
sigma:
  - [1, 2]
priorStd: 3
`

func TestRun_FuseStdin(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, run([]string{"fuse", "-workers", "2"}, strings.NewReader(fuseDoc), &out, &errOut))

	var resp api.FuseResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.InDelta(t, 5.4220, float64(resp.Mean[0][0]), 1e-4)
	assert.InDelta(t, 0.8741, float64(resp.Variance[0]), 1e-4)
	assert.Empty(t, errOut.String())
}

func TestRun_FuseUnstableNonFinite(t *testing.T) {
	doc := `
predictions:
  - [[1e308, 1e308]]
sigma:
  - [1, 1]
priorStd: 0.5
weighting: bcm
allowUnstable: true
`
	var out, errOut bytes.Buffer
	require.NoError(t, run([]string{"fuse"}, strings.NewReader(doc), &out, &errOut))
	assert.JSONEq(t, `{"mean": [[null]], "variance": [-0.5], "unstable": [0]}`, out.String())
	assert.Contains(t, errOut.String(), "unstable locations")
}

func TestRun_PartitionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	doc := "x: [[0], [1], [2], [3], [4], [5]]\npointsPerExpert: 2\nstrategy: random\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	var first, second bytes.Buffer
	require.NoError(t, run([]string{"partition", "-in", path, "-seed", "11"}, nil, &first, &bytes.Buffer{}))
	require.NoError(t, run([]string{"partition", "-in", path, "-seed", "11"}, nil, &second, &bytes.Buffer{}))
	assert.Equal(t, first.String(), second.String())

	var resp api.PartitionResponse
	require.NoError(t, json.Unmarshal(first.Bytes(), &resp))
	assert.Len(t, resp.Groups, 3)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		in   string
		want error
	}{
		{name: "no command", args: nil, want: errUsage},
		{name: "unknown command", args: []string{"train"}, want: errUsage},
		{name: "unknown field", args: []string{"fuse"}, in: "bogus: 1\n", want: api.ErrInvalidRequest},
		{name: "group size", args: []string{"partition"}, in: "x: [[0]]\npointsPerExpert: 2\nstrategy: random\n", want: partition.ErrInvalidGroupSize},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := run(tc.args, strings.NewReader(tc.in), &bytes.Buffer{}, &bytes.Buffer{})
			assert.ErrorIs(t, err, tc.want)
		})
	}

	err := run([]string{"fuse", "-in", filepath.Join(t.TempDir(), "missing.yaml")}, nil, &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = run([]string{"fuse", "-workers", "0"}, strings.NewReader(fuseDoc), &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"version"}, nil, &out, &bytes.Buffer{}))
	assert.True(t, strings.HasPrefix(out.String(), "rbcm "))
}
