package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-picboot/ihex"
	"github.com/moffa90/go-picboot/serialport"
)

const appHex = ":0203000080314A\n" +
	":021FFE00B71416\n" +
	":00000001FF\n"

// run executes the CLI against fs. The commands install a global logger, so
// tests in this package do not run in parallel.
func run(t *testing.T, fs afero.Fs, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCmd(fs, &stdout, &stderr)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func testFS(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/fw/app.hex", []byte(appHex), 0o644))
	return fs
}

func TestFlashSimulated(t *testing.T) {
	fs := testFS(t)

	stdout, stderr, err := run(t, fs, "flash", "--simulate", "/fw/app.hex")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "flashed /fw/app.hex (7424 bytes, 0x0300-0x1FFF)")
	assert.Contains(t, stdout, "simulated device programmed 116 pages")
	assert.Contains(t, stderr, "Verifying")
}

func TestFlashQuietWithProfile(t *testing.T) {
	fs := testFS(t)
	require.NoError(t, afero.WriteFile(fs, "/etc/small.toml", []byte(
		"name = \"small\"\n"+
			"app_end = 0x0400\n"+
			"page_size = 32\n"+
			"load_complete_word = 0\n"), 0o644))

	stdout, stderr, err := run(t, fs, "--profile", "/etc/small.toml", "flash", "-q", "--simulate", "/fw/app.hex")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "(256 bytes, 0x0300-0x03FF)")
	assert.Contains(t, stdout, "programmed 8 pages")
	assert.NotContains(t, stderr, "Writing")
}

func TestFlashErrors(t *testing.T) {
	fs := testFS(t)

	_, stderr, err := run(t, fs, "flash", "/fw/app.hex")
	require.Error(t, err)
	assert.Contains(t, stderr, "--port is required")

	_, _, err = run(t, fs, "flash", "--simulate", "/fw/missing.hex")
	assert.ErrorContains(t, err, "failed to open file")

	_, stderr, err = run(t, fs, "--profile", "/nope.toml", "flash", "--simulate", "/fw/app.hex")
	require.Error(t, err)
	assert.Contains(t, stderr, "failed to read profile")

	_, _, err = run(t, fs, "--log-level", "loud", "info", "/fw/app.hex")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestInfo(t *testing.T) {
	fs := testFS(t)

	stdout, stderr, err := run(t, fs, "info", "/fw/app.hex")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "0x0300-0x1FFF")
	assert.Contains(t, stdout, "0x0300-0x0301 (2 bytes)")
	assert.Contains(t, stdout, "0x1FFE-0x1FFF (2 bytes)")
	assert.Contains(t, stdout, "PIC16F15214, application 0x0300-0x1FFF, 116 pages")
	assert.NotContains(t, stdout, "warnings:")
}

func TestInfoReportsMissingLoadComplete(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a.hex", []byte(":0203000080314A\n"), 0o644))

	stdout, _, err := run(t, fs, "info", "/a.hex")
	require.NoError(t, err)
	assert.Contains(t, stdout, "warnings:")
	assert.Contains(t, stdout, "load-complete word 0x14B7 not found at 0x1FFE")
}

func TestDump(t *testing.T) {
	fs := testFS(t)

	stdout, _, err := run(t, fs, "dump", "--raw", "--format", "columns", "/fw/app.hex")
	require.NoError(t, err)
	assert.Equal(t, "300 80\n301 31\n1FFE B7\n1FFF 14\n", stdout)

	_, _, err = run(t, fs, "dump", "--format", "bin", "--out", "/out/app.bin", "/fw/app.hex")
	require.NoError(t, err)
	data, err := afero.ReadFile(fs, "/out/app.bin")
	require.NoError(t, err)
	require.Len(t, data, 0x1D00)
	assert.Equal(t, []byte{0x80, 0x31, 0xFF, 0x3F}, data[:4])
	assert.Equal(t, []byte{0xB7, 0x14}, data[len(data)-2:])

	stdout, _, err = run(t, fs, "dump", "--raw", "/fw/app.hex")
	require.NoError(t, err)
	img, err := ihex.LoadReader(strings.NewReader(stdout), true)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Len())

	_, _, err = run(t, fs, "dump", "--format", "srec", "/fw/app.hex")
	assert.ErrorContains(t, err, `unknown format "srec"`)
}

func TestMerge(t *testing.T) {
	fs := testFS(t)
	require.NoError(t, afero.WriteFile(fs, "/fw/patch.hex", []byte(
		":02030000813149\n"+
			":00000001FF\n"), 0o644))

	stdout, stderr, err := run(t, fs, "merge", "/out/merged.hex", "/fw/app.hex", "/fw/patch.hex")
	require.NoError(t, err)
	assert.Contains(t, stdout, "merged 2 files into /out/merged.hex (4 bytes)")
	assert.Contains(t, stderr, "address 0x300 is being overwritten in merge")

	img, err := ihex.LoadFS(fs, "/out/merged.hex", true)
	require.NoError(t, err)
	v, _ := img.Get(0x0300)
	assert.Equal(t, byte(0x81), v)
}

func TestProfileCmd(t *testing.T) {
	fs := testFS(t)

	stdout, _, err := run(t, fs, "profile")
	require.NoError(t, err)
	assert.Contains(t, stdout, "PIC16F15214")
	assert.Contains(t, stdout, "page_size = 64")
}

func TestPortsCmd(t *testing.T) {
	orig := listPorts
	t.Cleanup(func() { listPorts = orig })

	listPorts = func() ([]serialport.PortInfo, error) {
		return []serialport.PortInfo{
			{Name: "/dev/ttyS0"},
			{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", SerialNumber: "A10K", Product: "FT232R"},
		}, nil
	}

	stdout, _, err := run(t, afero.NewMemMapFs(), "ports")
	require.NoError(t, err)
	assert.Contains(t, stdout, "/dev/ttyS0")
	assert.Contains(t, stdout, "USB 0403:6001")
	assert.Contains(t, stdout, "FT232R")

	listPorts = func() ([]serialport.PortInfo, error) { return nil, nil }
	stdout, _, err = run(t, afero.NewMemMapFs(), "ports")
	require.NoError(t, err)
	assert.Equal(t, "no serial ports found\n", stdout)
}
