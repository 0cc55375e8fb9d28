package track

import (
	"fmt"
	"image"
	_ "image/png" // register png decoder
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mpapenbr/tankrace/pkg/model"
)

type (
	// ZoneDescriptor defines a mask either by image or by WKT polygon
	ZoneDescriptor struct {
		Image  string  `mapstructure:"image"`
		WKT    string  `mapstructure:"wkt"`
		Scale  float64 `mapstructure:"scale"`
		Rotate float64 `mapstructure:"rotate"`
		Anchor []int   `mapstructure:"anchor"`
	}
	FootprintDescriptor struct {
		Image  string  `mapstructure:"image"`
		Scale  float64 `mapstructure:"scale"`
		Width  int     `mapstructure:"width"`
		Height int     `mapstructure:"height"`
	}
	StartDescriptor struct {
		X       float64 `mapstructure:"x"`
		Y       float64 `mapstructure:"y"`
		Heading float64 `mapstructure:"heading"`
	}
	Descriptor struct {
		Name        string              `mapstructure:"name"`
		Width       int                 `mapstructure:"width"`
		Height      int                 `mapstructure:"height"`
		Playable    ZoneDescriptor      `mapstructure:"playable"`
		Limit       ZoneDescriptor      `mapstructure:"limit"`
		Finish      ZoneDescriptor      `mapstructure:"finish"`
		Checkpoints []ZoneDescriptor    `mapstructure:"checkpoints"`
		Footprint   FootprintDescriptor `mapstructure:"footprint"`
		Start       StartDescriptor     `mapstructure:"start"`
		RacingLine  [][]float64         `mapstructure:"racing-line"`
	}
)

// LoadFile reads a track descriptor (yaml or json) and builds the track.
// Image paths are resolved relative to the descriptor.
func LoadFile(path string) (*Track, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read track descriptor: %w", err)
	}
	d := Descriptor{}
	if err := v.Unmarshal(&d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}
	return FromDescriptor(&d, filepath.Dir(path))
}

//nolint:funlen // by design
func FromDescriptor(d *Descriptor, baseDir string) (*Track, error) {
	t := &Track{
		Name:   d.Name,
		Width:  d.Width,
		Height: d.Height,
		Start:  model.Pose{X: d.Start.X, Y: d.Start.Y, Heading: d.Start.Heading},
	}
	var err error
	if t.Playable, err = buildZone(&d.Playable, baseDir); err != nil {
		return nil, fmt.Errorf("playable: %w", err)
	}
	if d.Limit.Image == "" && d.Limit.WKT == "" {
		t.Limit = Zone{Mask: NewMask(0, 0)}
	} else if t.Limit, err = buildZone(&d.Limit, baseDir); err != nil {
		return nil, fmt.Errorf("limit: %w", err)
	}
	if t.Finish, err = buildZone(&d.Finish, baseDir); err != nil {
		return nil, fmt.Errorf("finish: %w", err)
	}
	for i := range d.Checkpoints {
		z, zErr := buildZone(&d.Checkpoints[i], baseDir)
		if zErr != nil {
			return nil, fmt.Errorf("checkpoint %d: %w", i, zErr)
		}
		t.Checkpoints = append(t.Checkpoints, z)
	}
	if t.Footprint, err = buildFootprint(&d.Footprint, baseDir); err != nil {
		return nil, fmt.Errorf("footprint: %w", err)
	}
	for i, wp := range d.RacingLine {
		if len(wp) != 2 {
			return nil, fmt.Errorf("%w: racing line entry %d needs x and y",
				ErrInvalidDescriptor, i)
		}
		t.RacingLine = append(t.RacingLine, Waypoint{X: wp[0], Y: wp[1]})
	}
	if t.Width == 0 && t.Height == 0 {
		t.Width = t.Playable.Anchor.X + t.Playable.Mask.Width()
		t.Height = t.Playable.Anchor.Y + t.Playable.Mask.Height()
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func buildZone(zd *ZoneDescriptor, baseDir string) (Zone, error) {
	switch {
	case zd.WKT != "":
		m, anchor, err := FromWKT(zd.WKT)
		if err != nil {
			return Zone{}, err
		}
		return Zone{Mask: m, Anchor: anchor}, nil
	case zd.Image != "":
		m, err := loadImageMask(filepath.Join(baseDir, zd.Image))
		if err != nil {
			return Zone{}, err
		}
		if zd.Scale > 0 && zd.Scale != 1 {
			m = m.Scale(zd.Scale)
		}
		if zd.Rotate != 0 {
			m = m.Rotate(zd.Rotate)
		}
		z := Zone{Mask: m}
		switch len(zd.Anchor) {
		case 0:
		case 2:
			z.Anchor = Point{X: zd.Anchor[0], Y: zd.Anchor[1]}
		default:
			return Zone{}, fmt.Errorf("%w: anchor needs x and y", ErrInvalidDescriptor)
		}
		return z, nil
	default:
		return Zone{}, fmt.Errorf("%w: zone needs image or wkt", ErrInvalidDescriptor)
	}
}

func buildFootprint(fd *FootprintDescriptor, baseDir string) (*Mask, error) {
	if fd.Image == "" {
		if fd.Width <= 0 || fd.Height <= 0 {
			return nil, fmt.Errorf("%w: footprint needs image or size", ErrInvalidDescriptor)
		}
		return Rect(fd.Width, fd.Height), nil
	}
	m, err := loadImageMask(filepath.Join(baseDir, fd.Image))
	if err != nil {
		return nil, err
	}
	if fd.Scale > 0 && fd.Scale != 1 {
		m = m.Scale(fd.Scale)
	}
	return m, nil
}

func loadImageMask(path string) (*Mask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return FromImage(img), nil
}
