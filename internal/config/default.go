package config

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// Default returns a runnable 257x257 configuration with every stage enabled.
func Default() *Settings {
	return &Settings{
		Width:   257,
		Length:  257,
		Seed:    1337,
		Workers: 0,
		Noise: []NoiseLayer{
			{
				Enabled:         true,
				Name:            "continent",
				Basis:           BasisPerlin,
				Layers:          6,
				BaseScale:       3,
				Amplitude:       floatPtr(1),
				AmplitudeDecay:  0.5,
				FrequencyGrowth: 2,
				Blend:           BlendAdditive,
			},
			{
				Enabled:         true,
				Name:            "ridges",
				Basis:           BasisSimplex,
				Layers:          3,
				BaseScale:       8,
				Amplitude:       floatPtr(0.35),
				AmplitudeDecay:  0.45,
				FrequencyGrowth: 2.2,
				Offset:          Vec2{X: 17.3, Y: -4.1},
				Blend:           BlendMultiplicative,
				SeedOffset:      11,
			},
		},
		Displacement: DisplacementConfig{
			Enabled: true,
			Factor:  0.4,
			Decay:   0.55,
		},
		Lake: LakeConfig{
			Enabled:    true,
			Center:     Vec2{X: 180, Y: 72},
			Radius:     26,
			WaterLevel: 1.15,
		},
		Rivers: []RiverConfig{
			{
				Enabled:   true,
				Start:     Vec2{X: 40, Y: 30},
				End:       Vec2{X: 220, Y: 230},
				Mode:      RiverDescent,
				Width:     4,
				Intensity: 0.12,
				MaxSteps:  2048,
			},
		},
		Trails: []TrailConfig{
			{
				Enabled:         true,
				Start:           Vec2{X: 0, Y: 128},
				End:             Vec2{X: 256, Y: 150},
				Width:           2.5,
				Intensity:       0.04,
				JitterAmplitude: 6,
				JitterFrequency: 3,
			},
		},
		Erosion: ErosionConfig{
			Enabled:    true,
			TalusAngle: 0.02,
			Iterations: 12,
		},
		Biomes: BiomeConfig{
			Enabled:      true,
			CellCount:    4,
			Distribution: DistributionGrid,
			Definitions: []BiomeDefinition{
				{Name: "meadow", Layers: [3]LayerRange{
					{Name: "shore", Min: 0, Max: 0.3},
					{Name: "grass", Min: 0.3, Max: 0.7},
					{Name: "rock", Min: 0.7, Max: 1},
				}},
				{Name: "forest", Layers: [3]LayerRange{
					{Name: "mud", Min: 0, Max: 0.25},
					{Name: "moss", Min: 0.25, Max: 0.8},
					{Name: "cliff", Min: 0.8, Max: 1},
				}},
				{Name: "desert", Layers: [3]LayerRange{
					{Name: "salt", Min: 0, Max: 0.2},
					{Name: "sand", Min: 0.2, Max: 0.75},
					{Name: "mesa", Min: 0.75, Max: 1},
				}},
				{Name: "tundra", Layers: [3]LayerRange{
					{Name: "ice", Min: 0, Max: 0.35},
					{Name: "gravel", Min: 0.35, Max: 0.65},
					{Name: "snow", Min: 0.65, Max: 1},
				}},
			},
		},
		Features: FeatureConfig{
			Enabled:       true,
			GlobalDensity: 1,
			TerrainHeight: 60,
			CellSize:      1,
			Cellular: CellularConfig{
				Iterations:        2,
				NeighborThreshold: 3,
			},
			Specs: []FeatureSpec{
				{
					Name:             "pine",
					HeightRange:      Range{Min: 0.3, Max: 0.8},
					SlopeRange:       Range{Min: 0, Max: 30},
					SpawnProbability: 0.35,
					RequiredBiome:    intPtr(1),
					DensityRange:     Range{Min: 0.6, Max: 1},
					ScaleRange:       Range{Min: 0.8, Max: 1.4},
					RotationRange:    Range{Min: 0, Max: 360},
				},
				{
					Name:             "boulder",
					HeightRange:      Range{Min: 0.5, Max: 1},
					SlopeRange:       Range{Min: 10, Max: 60},
					SpawnProbability: 0.2,
					DensityRange:     Range{Min: 0.2, Max: 0.5},
					ScaleRange:       Range{Min: 0.5, Max: 2},
					RotationRange:    Range{Min: 0, Max: 360},
				},
			},
		},
		Mesh: MeshConfig{
			Enabled:       true,
			GridWidth:     65,
			GridHeight:    24,
			GridLength:    65,
			VoxelSize:     1,
			HeightScale:   20,
			FalloffFactor: 2,
			Threshold:     0.5,
			Mode:          DensitySolid,
			Inside:        InsideAbove,
			WeldPrecision: 4,
			Caves: CaveConfig{
				Enabled:    false,
				Scale:      0.12,
				Weight:     0.6,
				Blend:      AuxSubtract,
				SeedOffset: 101,
			},
		},
	}
}
