package config

const (
	defaultModelDir          = "~/.local/share/kalign/model"
	defaultDictName          = "dict"
	defaultPhonesName        = "monophones"
	defaultSampleRate        = 16000
	defaultHCopy             = "HCopy"
	defaultHVite             = "HVite"
	defaultPrune             = 0.0
	defaultBeam              = 5.0
	defaultSurroundToken     = "sil"
	defaultWorkDir           = "~/.cache/kalign/work"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	modelDirEnv              = "KALIGN_MODEL_DIR"
	defaultConfigPathPattern = "~/.config/kalign/config.toml"
	projectConfigName        = "kalign.toml"
)

var defaultSampleRates = []int{8000, 11025, 16000}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Model: Model{
			Dir:               defaultModelDir,
			SampleRates:       append([]int(nil), defaultSampleRates...),
			DefaultSampleRate: defaultSampleRate,
		},
		HTK: HTK{
			HCopy: defaultHCopy,
			HVite: defaultHVite,
			Prune: defaultPrune,
			Beam:  defaultBeam,
		},
		Dictionary: Dictionary{
			AppendPause:    true,
			RomanizeLabels: true,
			IncludeSilence: true,
		},
		Alignment: Alignment{
			SurroundToken: defaultSurroundToken,
			HangulLabels:  true,
		},
		Paths: Paths{
			WorkDir: defaultWorkDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
