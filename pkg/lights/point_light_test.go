package lights

import (
	"math"
	"testing"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

func TestPointLight_Sample(t *testing.T) {
	light := NewPointLight(core.NewVec3(0, 5, 0), 50, core.NewVec3(1, 0.5, 0.25))

	tests := []struct {
		name             string
		point            core.Vec3
		expectedDir      core.Vec3
		expectedDistance float64
		expectedRadiance core.Vec3
	}{
		{
			name:             "directly below",
			point:            core.NewVec3(0, 0, 0),
			expectedDir:      core.NewVec3(0, 1, 0),
			expectedDistance: 5,
			expectedRadiance: core.NewVec3(2, 1, 0.5),
		},
		{
			name:             "to the side",
			point:            core.NewVec3(5, 5, 0),
			expectedDir:      core.NewVec3(-1, 0, 0),
			expectedDistance: 5,
			expectedRadiance: core.NewVec3(2, 1, 0.5),
		},
		{
			name:             "close",
			point:            core.NewVec3(0, 4, 0),
			expectedDir:      core.NewVec3(0, 1, 0),
			expectedDistance: 1,
			expectedRadiance: core.NewVec3(50, 25, 12.5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := light.Sample(tt.point)

			const tolerance = 1e-9
			if sample.Direction.Subtract(tt.expectedDir).Length() > tolerance {
				t.Errorf("Expected direction %v, got %v", tt.expectedDir, sample.Direction)
			}
			if math.Abs(sample.Distance-tt.expectedDistance) > tolerance {
				t.Errorf("Expected distance %v, got %v", tt.expectedDistance, sample.Distance)
			}
			if sample.Radiance.Subtract(tt.expectedRadiance).Length() > tolerance {
				t.Errorf("Expected radiance %v, got %v", tt.expectedRadiance, sample.Radiance)
			}
		})
	}
}

func TestPointLight_RadianceAtLightIsFinite(t *testing.T) {
	light := NewPointLight(core.NewVec3(1, 2, 3), 70, core.White)
	if r := light.Radiance(light.Position); !r.IsFinite() {
		t.Errorf("Expected finite radiance at the light position, got %v", r)
	}
	if light.Type() != LightTypePoint {
		t.Errorf("Unexpected type %v", light.Type())
	}
}
