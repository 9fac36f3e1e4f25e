package profile

// Profile bundles packing parameters for a target backend.
type Profile struct {
	Name       string
	Format     string    // output codec: webp, ktx2, png
	Quality    int       // encoding quality 1-100
	MaxSize    int       // maximum atlas bin dimension in pixels
	RegionSize int       // dedup grid cell size in pixels
	Border     int       // duplicated-edge padding around each region
	Padding    int       // spacing between packed rectangles
	Scales     []float64 // output scales, 1 = source resolution
}

// Built-in profiles.
var profiles = map[string]Profile{
	"web": {
		Name:       "web",
		Format:     "webp",
		Quality:    90,
		MaxSize:    2048,
		RegionSize: 64,
		Border:     4,
		Padding:    2,
		Scales:     []float64{1},
	},
	"web-hq": {
		Name:       "web-hq",
		Format:     "webp",
		Quality:    95,
		MaxSize:    4096,
		RegionSize: 64,
		Border:     4,
		Padding:    2,
		Scales:     []float64{1, 0.5},
	},
	"gpu": {
		Name:       "gpu",
		Format:     "ktx2",
		Quality:    90,
		MaxSize:    4096,
		RegionSize: 64,
		Border:     4,
		Padding:    2,
		Scales:     []float64{1},
	},
	"lossless": {
		Name:       "lossless",
		Format:     "png",
		Quality:    100,
		MaxSize:    2048,
		RegionSize: 64,
		Border:     4,
		Padding:    2,
		Scales:     []float64{1},
	},
}

// Get returns a profile by name. Falls back to web if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles["web"]
	p.Name = name // preserve requested name
	return p
}
