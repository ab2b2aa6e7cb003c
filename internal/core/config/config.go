// Package config holds the session configuration. Values are yaml-decodable
// so hosts can ship tuning files; Default covers everything for headless and
// test runs.
package config

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verdant-games/gecko/internal/core/mathx"
)

// Duration is a yaml-decodable duration accepting both "250ms" strings and
// raw nanosecond integers.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		dur, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = Duration(dur)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

// Std converts to the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) Seconds() float64 { return time.Duration(d).Seconds() }

type Config struct {
	Gravity       mathx.Vec3 `yaml:"gravity"`
	FrameInterval Duration   `yaml:"frame_interval"`
	// OutOfBoundsY is the floor below which the player counts as fallen out
	// of the world.
	OutOfBoundsY float64    `yaml:"out_of_bounds_y"`
	PlayerStart  mathx.Vec3 `yaml:"player_start"`

	Scan     Scan     `yaml:"scan"`
	Camera   Camera   `yaml:"camera"`
	Viewport Viewport `yaml:"viewport"`
	Assets   Assets   `yaml:"assets"`
}

// Scan configures the objective-marker proximity trigger and the ordered
// target positions of a session.
type Scan struct {
	Threshold float64      `yaml:"threshold"`
	Cooldown  Duration     `yaml:"cooldown"`
	Targets   []mathx.Vec3 `yaml:"targets"`
}

type Camera struct {
	// Offset is the camera position relative to the followed entity, in the
	// entity's facing frame.
	Offset mathx.Vec3 `yaml:"offset"`
	// Smoothing scales how quickly the camera converges per second; higher
	// is snappier, the camera never snaps outright.
	Smoothing float64 `yaml:"smoothing"`
	FOV       float64 `yaml:"fov"`
}

type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Assets struct {
	Avatar string `yaml:"avatar"`
	Ground string `yaml:"ground"`
	Marker string `yaml:"marker"`
}

func Default() Config {
	return Config{
		Gravity:       mathx.V(0, -9.81, 0),
		FrameInterval: Duration(16 * time.Millisecond),
		OutOfBoundsY:  -25,
		PlayerStart:   mathx.V(0, 1, 0),
		Scan: Scan{
			Threshold: 3.0,
			Cooldown:  Duration(time.Second),
			Targets: []mathx.Vec3{
				mathx.V(8, 1, 0),
				mathx.V(-6, 1, 7),
				mathx.V(0, 1, -9),
			},
		},
		Camera: Camera{
			Offset:    mathx.V(0, 3.5, -6),
			Smoothing: 5,
			FOV:       60,
		},
		Viewport: Viewport{Width: 1280, Height: 720},
		Assets: Assets{
			Avatar: "models/gecko.glb",
			Ground: "models/terrain.glb",
			Marker: "models/scan_beacon.glb",
		},
	}
}

// LoadYAML decodes a config on top of the defaults, so partial files only
// override what they mention.
func LoadYAML(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
