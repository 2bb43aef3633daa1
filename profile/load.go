package profile

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// LoadFile reads and validates a profile from path on fs.
func LoadFile(fs afero.Fs, path string) (Profile, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}

	p, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Decode reads a profile from r on top of Default and validates it.
// Unknown keys are rejected.
func Decode(r io.Reader) (Profile, error) {
	p := Default()

	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Encode writes p as TOML.
func (p Profile) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return nil
}
