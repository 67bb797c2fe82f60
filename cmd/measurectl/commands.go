package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
	"github.com/samirrijal/pinmeasure/internal/core/measure"
	"github.com/samirrijal/pinmeasure/internal/pkg/geospatial"
	"github.com/samirrijal/pinmeasure/internal/pkg/logging"
)

type result struct {
	Measurement domain.Measurement `json:"measurement"`
	Points      []domain.GeoPoint  `json:"points"`
	Bounds      *domain.Bounds     `json:"bounds,omitempty"`
}

func newRootCmd() *cobra.Command {
	var (
		asJSON   bool
		logLevel string
	)

	root := &cobra.Command{
		Use:           "measurectl",
		Short:         "Measure path length or enclosed area of a point list",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger := logging.New(cmd.ErrOrStderr(), logLevel, "text")
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
	}
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print the measurement as JSON")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")

	for _, mode := range []domain.Mode{domain.ModePath, domain.ModeArea} {
		mode := mode
		root.AddCommand(&cobra.Command{
			Use:   string(mode) + " FILE",
			Short: fmt.Sprintf("Print the %s covered by the points in FILE (- for stdin)", mode),
			Long: "FILE is GeoJSON (FeatureCollection, Feature or geometry) or a JSON array\n" +
				"of {\"lat\": .., \"lon\": ..} objects. Points are taken in order.",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := readInput(cmd.InOrStdin(), args[0])
				if err != nil {
					return err
				}
				points, err := parsePoints(data)
				if err != nil {
					return fmt.Errorf("parse %s: %w", args[0], err)
				}
				loggerFrom(cmd.Context()).Debug("points loaded", "count", len(points), "mode", mode)

				res, err := run(mode, points)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), res, asJSON)
			},
		})
	}

	return root
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %v: %w", path, err)
	}
	return data, nil
}

// parsePoints accepts a JSON array of points or any GeoJSON document.
func parsePoints(data []byte) ([]domain.GeoPoint, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var points []domain.GeoPoint
		if err := json.Unmarshal(trimmed, &points); err != nil {
			return nil, err
		}
		return points, nil
	}
	return geospatial.PointsFromGeoJSON(trimmed)
}

// run measures the points the same way the service does.
func run(mode domain.Mode, points []domain.GeoPoint) (result, error) {
	engine, m, err := measure.FromPoints(mode, points)
	if err != nil {
		return result{}, err
	}

	res := result{Measurement: m, Points: engine.Points()}
	if engine.Len() > 0 {
		b := geospatial.Bounds(res.Points)
		res.Bounds = &b
	}
	return res, nil
}

func render(w io.Writer, res result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err := fmt.Fprintln(w, res.Measurement.Label)
	return err
}
