// Package instance loads cutting stock instances from YAML files of the
// form
//
//	roll_width: 100
//	widths:  [22, 42, 52, 53, 78]
//	demands: [45, 38, 25, 11, 12]
package instance

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"q.log/colgen/colgen"
)

type file struct {
	RollWidth float64   `yaml:"roll_width"`
	Widths    []float64 `yaml:"widths"`
	Demands   []float64 `yaml:"demands"`
}

// Parse decodes one instance. Unknown keys are rejected, and the
// decoded data is validated before being returned.
func Parse(data []byte) (colgen.Instance, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f file
	if err := dec.Decode(&f); err != nil {
		return colgen.Instance{}, errors.Wrap(err, "instance: parse")
	}
	in := colgen.Instance{RollWidth: f.RollWidth, Widths: f.Widths, Demands: f.Demands}
	if err := in.Validate(); err != nil {
		return colgen.Instance{}, err
	}
	return in, nil
}

// Load reads and parses the instance file at path.
func Load(path string) (colgen.Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return colgen.Instance{}, errors.Wrap(err, "instance: read")
	}
	return Parse(data)
}
