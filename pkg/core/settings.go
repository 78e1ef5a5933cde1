package core

import (
	"fmt"
	"strings"
)

// LightingMode selects which terms the renderer multiplies into each light contribution
type LightingMode int

const (
	LightingObservedArea LightingMode = iota // cosine term only
	LightingRadiance                         // light radiance only
	LightingBRDF                             // material response only
	LightingCombined                         // all terms
)

var lightingModeNames = [...]string{"observedArea", "radiance", "brdf", "combined"}

func (m LightingMode) String() string {
	if m < 0 || int(m) >= len(lightingModeNames) {
		return fmt.Sprintf("LightingMode(%d)", int(m))
	}
	return lightingModeNames[m]
}

// Next returns the following mode, wrapping after combined
func (m LightingMode) Next() LightingMode {
	return (m + 1) % LightingMode(len(lightingModeNames))
}

// MarshalText encodes the mode by name
func (m LightingMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name
func (m *LightingMode) UnmarshalText(text []byte) error {
	parsed, err := ParseLightingMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseLightingMode resolves a mode name case-insensitively
func ParseLightingMode(name string) (LightingMode, error) {
	for i, n := range lightingModeNames {
		if strings.EqualFold(n, name) {
			return LightingMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown lighting mode %q", name)
}

// RenderSettings holds the user-togglable renderer switches.
// Any change invalidates accumulated samples.
type RenderSettings struct {
	LightingMode      LightingMode `json:"lightingMode"`
	Shadows           bool         `json:"shadows"`
	Reflections       bool         `json:"reflections"`
	MaxBounces        int          `json:"maxBounces"`
	Accumulate        bool         `json:"accumulate"`
	GlossyReflections bool         `json:"glossyReflections"`
}

// DefaultRenderSettings returns the settings used when a scene does not specify any
func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		LightingMode:      LightingCombined,
		Shadows:           true,
		Reflections:       true,
		MaxBounces:        1,
		Accumulate:        true,
		GlossyReflections: false,
	}
}
