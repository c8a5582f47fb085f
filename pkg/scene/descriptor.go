package scene

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/voxelsnap/voxelsnap/pkg/errors"
	"github.com/voxelsnap/voxelsnap/pkg/geom"
)

// descriptorVersion is the scene description format version the renderer
// accepts.
const descriptorVersion = 9

// Descriptor is the full scene file consumed by the renderer. Field names
// follow the renderer's JSON schema, so they stay camelCase regardless of
// Go conventions.
type Descriptor struct {
	SdfVersion    int     `json:"sdfVersion"`
	Name          string  `json:"name"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Exposure      float64 `json:"exposure"`
	Postprocess   string  `json:"postprocess"`
	OutputMode    string  `json:"outputMode"`
	RenderTime    int     `json:"renderTime"`
	SPP           int     `json:"spp"`
	SPPTarget     int     `json:"sppTarget"`
	PathTrace     bool    `json:"pathTrace"`
	DumpFrequency int     `json:"dumpFrequency"`
	SaveSnapshots bool    `json:"saveSnapshots"`
	SaveDumps     bool    `json:"saveDumps"`

	Camera CameraBlock `json:"camera"`
	Sun    SunBlock    `json:"sun"`
	Sky    SkyBlock    `json:"sky"`
	World  WorldBlock  `json:"world"`

	ChunkList [][2]int `json:"chunkList"`

	YMin     int `json:"yMin"`
	YMax     int `json:"yMax"`
	YClipMin int `json:"yClipMin"`
	YClipMax int `json:"yClipMax"`

	TransparentSky bool  `json:"transparentSky"`
	RenderActors   bool  `json:"renderActors"`
	Entities       []any `json:"entities"`

	EmitterIntensity        float64 `json:"emitterIntensity"`
	EmitterSamplingStrategy string  `json:"emitterSamplingStrategy"`
	BiomeColorsEnabled      bool    `json:"biomeColorsEnabled"`
	StillWater              bool    `json:"stillWater"`
	ClearWater              bool    `json:"clearWater"`
	AtmosphereEnabled       bool    `json:"atmosphereEnabled"`
	VolumetricFogEnabled    bool    `json:"volumetricFogEnabled"`
	WaterHeight             int     `json:"waterHeight"`
}

// CameraBlock positions the camera. The renderer reads dof as a string so
// "Infinity" is representable.
type CameraBlock struct {
	Name           string      `json:"name"`
	ProjectionMode string      `json:"projectionMode"`
	FOV            float64     `json:"fov"`
	DOF            string      `json:"dof"`
	FocalOffset    float64     `json:"focalOffset"`
	Position       Vec3Block   `json:"position"`
	Orientation    Orientation `json:"orientation"`
}

type Vec3Block struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Orientation angles are in degrees.
type Orientation struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

type SunBlock struct {
	Enabled   bool       `json:"enabled"`
	Azimuth   float64    `json:"azimuth"`
	Altitude  float64    `json:"altitude"`
	Intensity float64    `json:"intensity"`
	Color     ColorBlock `json:"color"`
}

type ColorBlock struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

type SkyBlock struct {
	SkyYaw        float64 `json:"skyYaw"`
	SkyMirrored   bool    `json:"skyMirrored"`
	SkyLight      float64 `json:"skyLight"`
	Mode          string  `json:"mode"`
	HorizonOffset float64 `json:"horizonOffset"`
}

type WorldBlock struct {
	Path      string `json:"path"`
	Dimension int    `json:"dimension"`
}

// Build assembles a Descriptor from the camera, world, and chunk list.
// The scene name is the base name of sceneDir, which is also what the
// renderer expects the JSON file to be called.
func Build(sceneDir, worldPath string, cam geom.Camera, chunks []geom.ChunkCoord, cfg Config) (Descriptor, error) {
	absWorld, err := filepath.Abs(worldPath)
	if err != nil {
		return Descriptor{}, errors.Wrap(errors.ErrCodeInternal, err,
			"resolving world path %q", worldPath)
	}

	chunkList := make([][2]int, len(chunks))
	for i, c := range chunks {
		chunkList[i] = [2]int{c.X, c.Z}
	}

	skyMode := "SIMULATED"
	if cfg.TransparentSky {
		skyMode = "BLACK"
	}

	return Descriptor{
		SdfVersion:  descriptorVersion,
		Name:        filepath.Base(sceneDir),
		Width:       cfg.Width,
		Height:      cfg.Height,
		Exposure:    cfg.Exposure,
		Postprocess: "NONE",
		OutputMode:  "PNG",
		SPPTarget:   cfg.SPP,
		PathTrace:   true,

		Camera: CameraBlock{
			Name:           "camera_1",
			ProjectionMode: cfg.ProjectionMode,
			FOV:            cfg.FOV,
			DOF:            "Infinity",
			FocalOffset:    2,
			Position: Vec3Block{
				X: cam.Position.X(),
				Y: cam.Position.Y(),
				Z: cam.Position.Z(),
			},
			Orientation: Orientation{
				Pitch: cam.Pitch,
				Yaw:   cam.Yaw,
				Roll:  cam.Roll,
			},
		},
		Sun: SunBlock{
			Enabled:   true,
			Azimuth:   cfg.Sun.Azimuth,
			Altitude:  cfg.Sun.Altitude,
			Intensity: cfg.Sun.Intensity,
			Color:     ColorBlock{Red: 1, Green: 1, Blue: 1},
		},
		Sky: SkyBlock{
			SkyLight:      cfg.Sky.Light,
			Mode:          skyMode,
			HorizonOffset: cfg.Sky.HorizonOffset,
		},
		World: WorldBlock{Path: absWorld, Dimension: 0},

		ChunkList: chunkList,

		YMin:     cfg.YMin,
		YMax:     cfg.YMax,
		YClipMin: cfg.YMin,
		YClipMax: cfg.YMax,

		TransparentSky: cfg.TransparentSky,
		Entities:       []any{},

		EmitterIntensity:        cfg.EmitterIntensity,
		EmitterSamplingStrategy: "ONE",
		BiomeColorsEnabled:      cfg.BiomeColors,
	}, nil
}

// Generate writes the scene descriptor into sceneDir and returns the path
// of the JSON file. The directory is created if needed.
func Generate(sceneDir, worldPath string, cam geom.Camera, chunks []geom.ChunkCoord, cfg Config) (string, error) {
	desc, err := Build(sceneDir, worldPath, cam, chunks, cfg)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(sceneDir, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeStoreCreate, err,
			"creating scene directory %q", sceneDir)
	}

	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encoding scene %q", desc.Name)
	}

	path := filepath.Join(sceneDir, desc.Name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(errors.ErrCodeStoreSave, err, "writing scene file %q", path)
	}
	return path, nil
}

// ReadTarget reads back the sample target from a descriptor on disk. The
// renderer names its snapshot after that value, so the invoker needs it
// to locate the output.
func ReadTarget(scenePath string) (int, error) {
	data, err := os.ReadFile(scenePath)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeNotFound, err, "reading scene file %q", scenePath)
	}
	var desc struct {
		SPPTarget int `json:"sppTarget"`
	}
	if err := json.Unmarshal(data, &desc); err != nil {
		return 0, errors.Wrap(errors.ErrCodeLoad, err, "parsing scene file %q", scenePath)
	}
	return desc.SPPTarget, nil
}
