// Package scene generates the external renderer's declarative scene
// descriptor: camera placement, lighting, the chunk list to load, and
// render-quality parameters.
package scene

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the render defaults embedded in every scene descriptor.
// Values are explicit struct fields rather than ambient globals; a TOML
// file can override any subset of them.
type Config struct {
	Width          int     `toml:"width"`
	Height         int     `toml:"height"`
	SPP            int     `toml:"spp"`
	FOV            float64 `toml:"fov"`
	ProjectionMode string  `toml:"projection_mode"`
	TransparentSky bool    `toml:"transparent_sky"`
	Exposure       float64 `toml:"exposure"`
	YMin           int     `toml:"y_min"`
	YMax           int     `toml:"y_max"`

	Sun Sun `toml:"sun"`
	Sky Sky `toml:"sky"`

	EmitterIntensity float64 `toml:"emitter_intensity"`
	BiomeColors      bool    `toml:"biome_colors"`
}

// Sun is the directional light configuration.
type Sun struct {
	Azimuth   float64 `toml:"azimuth"`  // degrees from north
	Altitude  float64 `toml:"altitude"` // degrees above horizon
	Intensity float64 `toml:"intensity"`
}

// Sky is the sky lighting configuration.
type Sky struct {
	Light         float64 `toml:"light"`
	HorizonOffset float64 `toml:"horizon_offset"`
}

// DefaultConfig returns the standard render defaults: a square 512px
// image at 256 samples per pixel, 70° FOV, transparent sky, and a
// southwest afternoon sun.
func DefaultConfig() Config {
	return Config{
		Width:          512,
		Height:         512,
		SPP:            256,
		FOV:            70,
		ProjectionMode: "PINHOLE",
		TransparentSky: true,
		Exposure:       1,
		YMin:           0,
		YMax:           256,
		Sun: Sun{
			Azimuth:   225,
			Altitude:  45,
			Intensity: 1,
		},
		Sky: Sky{
			Light:         1,
			HorizonOffset: 0.1,
		},
		EmitterIntensity: 13,
		BiomeColors:      true,
	}
}

// LoadConfig overlays the defaults with values from a TOML file. A missing
// path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// AspectRatio returns width/height for the camera calculator.
func (c Config) AspectRatio() float64 {
	return float64(c.Width) / float64(c.Height)
}
