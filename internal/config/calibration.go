package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

// LoadCalibration overlays the YAML file at path on the default
// calibration and validates the result. An empty path returns the defaults.
// Lists such as aggregation weights are replaced, not merged.
func LoadCalibration(path string) (domain.Calibration, error) {
	cal := domain.DefaultCalibration()
	if path == "" {
		return cal, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Calibration{}, fmt.Errorf("config: read calibration: %w", err)
	}
	return ParseCalibration(data)
}

// ParseCalibration overlays YAML data on the defaults. Unknown keys are
// rejected so a typo cannot silently keep a default.
func ParseCalibration(data []byte) (domain.Calibration, error) {
	cal := domain.DefaultCalibration()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cal); err != nil && !errors.Is(err, io.EOF) {
		return domain.Calibration{}, fmt.Errorf("config: parse calibration: %w", err)
	}
	if err := cal.Validate(); err != nil {
		return domain.Calibration{}, fmt.Errorf("config: %w", err)
	}
	return cal, nil
}

// WriteCalibration renders cal as YAML.
func WriteCalibration(w io.Writer, cal domain.Calibration) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cal); err != nil {
		return fmt.Errorf("config: encode calibration: %w", err)
	}
	return enc.Close()
}
