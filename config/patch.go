package config

// PatchedFixture stores config info for a dmx fixture
type PatchedFixture struct {
	Name     string `yaml:"name"`
	Address  int    `yaml:"address"`
	Universe int    `yaml:"universe"`
	Profile  string `yaml:"profile"`
}

// PatchBeatLights returns the fixtures flashed on every beat when the beat light is enabled.
func PatchBeatLights() []PatchedFixture {
	return []PatchedFixture{
		// left middle par
		{
			Name:     "left_middle_par",
			Address:  115,
			Universe: 1,
			Profile:  "shehds-par",
		},
		// right middle par
		{
			Name:     "right_middle_par",
			Address:  139,
			Universe: 1,
			Profile:  "shehds-par",
		},
	}
}
