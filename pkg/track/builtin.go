package track

import "sync"

// BuiltinName is the name of the track used when no descriptor is configured
const BuiltinName = "kawaii-oval"

// builtin track geometry in track pixels, driven counter-clockwise
//
//nolint:lll // readability
var builtinDescriptor = Descriptor{
	Name:   BuiltinName,
	Width:  480,
	Height: 320,
	Playable: ZoneDescriptor{
		WKT: "POLYGON((80 20,400 20,460 80,460 240,400 300,80 300,20 240,20 80,80 20),(150 110,330 110,350 130,350 190,330 210,150 210,130 190,130 130,150 110))",
	},
	// infield island plus two barrier blocks
	Limit: ZoneDescriptor{
		WKT: "MULTIPOLYGON(((146 106,334 106,354 126,354 194,334 214,146 214,126 194,126 126,146 106)),((290 36,314 36,314 60,290 60,290 36)),((166 260,190 260,190 284,166 284,166 260)))",
	},
	Finish: ZoneDescriptor{WKT: "POLYGON((350 150,460 150,460 156,350 156,350 150))"},
	Checkpoints: []ZoneDescriptor{
		{WKT: "POLYGON((236 20,242 20,242 110,236 110,236 20))"},
		{WKT: "POLYGON((20 157,130 157,130 163,20 163,20 157))"},
		{WKT: "POLYGON((236 210,242 210,242 300,236 300,236 210))"},
		{WKT: "POLYGON((330 230,460 230,460 236,330 236,330 230))"},
	},
	Footprint: FootprintDescriptor{Width: 8, Height: 12},
	Start:     StartDescriptor{X: 400, Y: 174, Heading: 0},
	RacingLine: [][]float64{
		{405, 110}, {370, 80}, {110, 80}, {75, 115},
		{75, 205}, {110, 240}, {370, 240}, {405, 205},
	},
}

var (
	builtinOnce  sync.Once
	builtinTrack *Track
)

// Builtin returns the built-in track. The masks are rasterized on first use.
func Builtin() *Track {
	builtinOnce.Do(func() {
		t, err := FromDescriptor(&builtinDescriptor, "")
		if err != nil {
			panic("builtin track: " + err.Error())
		}
		builtinTrack = t
	})
	return builtinTrack
}
