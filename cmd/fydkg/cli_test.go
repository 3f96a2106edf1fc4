package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/f3rmion/fydkg/bjj"
	"github.com/f3rmion/fydkg/wire"
)

func execCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	badProof, corruptShare, transitShare, silent = nil, nil, nil, nil
	reportPath, outDir = "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "off"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	require.Equal(t, "fydkg", rootCmd.Use)
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "curves", "version"} {
		require.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestCurves(t *testing.T) {
	out, err := execCommand(t, "curves")
	require.NoError(t, err)
	require.Equal(t, "bjj\ned25519\nsecp256k1\n", out)
}

func TestFactory(t *testing.T) {
	for _, name := range curveNames() {
		g, err := newGroup(name)
		require.NoError(t, err)
		require.Equal(t, name, g.Name())
	}
	_, err := newGroup("p256")
	require.Error(t, err)

	_, err = newHasher("blake2b")
	require.NoError(t, err)
	_, err = newHasher("md5")
	require.Error(t, err)
}

func TestParseLink(t *testing.T) {
	from, to, err := parseLink("4:2")
	require.NoError(t, err)
	require.Equal(t, uint32(4), from)
	require.Equal(t, uint32(2), to)

	for _, bad := range []string{"4", "a:2", "4:-1"} {
		_, _, err := parseLink(bad)
		require.Error(t, err, bad)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	reportFile := filepath.Join(dir, "report.yaml")
	keys := filepath.Join(dir, "keys")

	out, err := execCommand(t, "run", "-t", "2", "-n", "3", "--curve", "bjj", "--timeout", "500ms",
		"--report", reportFile, "--out", keys)
	require.NoError(t, err)
	require.Contains(t, out, "group key:")

	data, err := os.ReadFile(reportFile)
	require.NoError(t, err)
	var r runReport
	require.NoError(t, yaml.Unmarshal(data, &r))
	require.Equal(t, "bjj", r.Curve)
	require.Len(t, r.Participants, 3)
	require.NotEmpty(t, r.GroupKey)

	codec := wire.NewCodec(&bjj.BJJ{})
	data, err = os.ReadFile(filepath.Join(keys, "participant-2.key"))
	require.NoError(t, err)
	share, gk, err := codec.DecodeKeyMaterial(data)
	require.NoError(t, err)
	require.Equal(t, uint32(2), share.Index())
	require.Equal(t, r.Participants[1].PublicKey, hex.EncodeToString(share.PublicKey().Bytes()))
	require.Equal(t, r.GroupKey, hex.EncodeToString(gk.Bytes()))
}

func TestRunWithFault(t *testing.T) {
	out, err := execCommand(t, "run", "-t", "3", "-n", "5", "--curve", "ed25519", "--timeout", "500ms",
		"--corrupt-share", "4:2", "--report", "-")
	require.NoError(t, err)
	require.Contains(t, out, "participant 4: failed")
	require.Contains(t, out, "excluded: [4]")
}

func TestRunInvalid(t *testing.T) {
	_, err := execCommand(t, "run", "-t", "4", "-n", "3")
	require.Error(t, err)
	_, err = execCommand(t, "run", "-t", "2", "-n", "3", "--curve", "p256")
	require.Error(t, err)
	_, err = execCommand(t, "run", "-t", "2", "-n", "3", "--curve", "bjj", "--corrupt-share", "1")
	require.Error(t, err)

	// 2^32 + 1 would wrap to participant 1.
	for _, flag := range []string{"--silent", "--bad-proof"} {
		_, err = execCommand(t, "run", "-t", "2", "-n", "3", "--curve", "bjj", flag, "4294967297")
		require.ErrorContains(t, err, "invalid "+flag, flag)
	}
}

func TestRunShareCorruptedInTransit(t *testing.T) {
	out, err := execCommand(t, "run", "-t", "3", "-n", "3", "--curve", "bjj", "--timeout", "500ms",
		"--corrupt-share-in-transit", "2:1")
	require.NoError(t, err)
	require.Contains(t, out, "participant 2: ok, qualified [1 2 3]")
	require.NotContains(t, out, "excluded:")
}
