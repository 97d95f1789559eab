package param

// Common parameter helpers

// GainParameter creates a gain parameter in dB
func GainParameter(id uint32, key, name string, minDB, maxDB, defaultDB float64) *Builder {
	return New(id, name).
		Key(key).
		Range(minDB, maxDB).
		Default(defaultDB).
		Unit("dB").
		Formatter(DecibelFormatter, DecibelParser)
}

// ThresholdParameter creates a threshold parameter (typically for dynamics)
func ThresholdParameter(id uint32, key, name string, minDB, maxDB, defaultDB float64) *Builder {
	return GainParameter(id, key, name, minDB, maxDB, defaultDB)
}

// RatioParameter creates a compression ratio parameter
func RatioParameter(id uint32, key, name string, minRatio, maxRatio, defaultRatio float64) *Builder {
	return New(id, name).
		Key(key).
		Range(minRatio, maxRatio).
		Default(defaultRatio).
		Unit(":1").
		Formatter(RatioFormatter, RatioParser)
}

// TimeParameter creates a time parameter in milliseconds whose control is
// skewed so the middle of its travel lands on defaultMs.
func TimeParameter(id uint32, key, name string, minMs, maxMs, defaultMs float64) *Builder {
	return New(id, name).
		Key(key).
		Range(minMs, maxMs).
		Default(defaultMs).
		SkewForCentre(defaultMs).
		Unit("ms").
		Formatter(TimeFormatter, TimeParser)
}

// BypassParameter creates a bypass on/off switch
func BypassParameter(id uint32, key, name string) *Builder {
	return New(id, name).
		Key(key).
		Toggle().
		Bypass()
}
