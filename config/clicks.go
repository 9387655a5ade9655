package config

// ClickTimbre names a click sound and the asset it is decoded from.
type ClickTimbre struct {
	Name   string
	Source string
}

// ClickTimbres lists the embedded click sounds, indexed by click type.
func ClickTimbres() []ClickTimbre {
	return []ClickTimbre{
		{Name: "Bright", Source: "clicks/click-0.wav"},
		{Name: "Wood", Source: "clicks/click-1.wav"},
		{Name: "Noise", Source: "clicks/click-2.wav"},
		{Name: "Bell", Source: "clicks/click-3.wav"},
	}
}

// DefaultClickSources returns the asset paths of the embedded click sounds.
func DefaultClickSources() []string {
	timbres := ClickTimbres()
	out := make([]string, 0, len(timbres))
	for _, timbre := range timbres {
		out = append(out, timbre.Source)
	}
	return out
}
