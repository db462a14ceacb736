package scenario

import "github.com/nvandessel/crosswalk/internal/models"

// SourceGenerated is the source label of scenarios built by Generate.
const SourceGenerated = "generated"

// Load reads the scenario at path, or generates one from cfg when path is
// empty. It returns the records and a label naming where they came from.
func Load(path string, cfg GeneratorConfig, rng Rand) ([]models.Record, string, error) {
	if path == "" {
		records, err := Generate(cfg, rng)
		if err != nil {
			return nil, "", err
		}
		return records, SourceGenerated, nil
	}
	records, err := ParseFile(path, cfg.Width, cfg.Height)
	if err != nil {
		return nil, "", err
	}
	return records, path, nil
}
