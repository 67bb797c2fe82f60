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
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDistance_PointArray(t *testing.T) {
	path := writeFile(t, "pins.json", `[{"lat":0,"lon":0},{"lat":0.008993216059187304,"lon":0}]`)

	out, err := execute(t, "", "distance", path)
	require.NoError(t, err)
	assert.Equal(t, "Total Distance: 1.00 km\n", out)
}

func TestArea_GeoJSONPolygon(t *testing.T) {
	polygon := `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}`

	out, err := execute(t, polygon, "area", "-")
	require.NoError(t, err)
	assert.Equal(t, "Total Area: 619570.00 hectares\n", out)
}

func TestArea_JSONOutput(t *testing.T) {
	out, err := execute(t, `[{"lat":0,"lon":0},{"lat":0,"lon":1},{"lat":1,"lon":1}]`, "--json", "area", "-")
	require.NoError(t, err)

	var res result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 619570.00, res.Measurement.Value)
	assert.Equal(t, "ha", res.Measurement.Unit)
	assert.Len(t, res.Points, 4)
	require.NotNil(t, res.Bounds)
	assert.Equal(t, 1.0, res.Bounds.MaxLat)
}

func TestArea_ClosedPointArray(t *testing.T) {
	out, err := execute(t, `[{"lat":0,"lon":0},{"lat":0,"lon":1},{"lat":1,"lon":1},{"lat":0,"lon":0}]`, "--json", "area", "-")
	require.NoError(t, err)

	var res result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 619570.00, res.Measurement.Value)
	assert.Len(t, res.Points, 4)
}

func TestErrors(t *testing.T) {
	_, err := execute(t, "", "distance", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = execute(t, `[{"lat":100,"lon":0}]`, "distance", "-")
	assert.ErrorContains(t, err, "point 0")

	_, err = execute(t, `not json`, "area", "-")
	assert.Error(t, err)

	_, err = execute(t, "", "distance")
	assert.Error(t, err)
}
