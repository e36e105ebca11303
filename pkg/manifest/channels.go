package manifest

import (
	"fmt"
	"os"

	"github.com/ospreyhq/osprey-cli/pkg/consts"
	"github.com/ospreyhq/osprey-cli/pkg/types"
	"gopkg.in/yaml.v3"
)

// Channel describes one generated provider manifest
type Channel struct {
	// Name identifies the release channel
	Name string `yaml:"name"`

	// File is the output filename under dist/provider
	File string `yaml:"file"`

	// Runtime is the runtime version written into the generated manifest
	Runtime string `yaml:"runtime"`

	// Provider is the provider version token used to resolve the service
	// manifest URL
	Provider string `yaml:"provider"`
}

type channelsFile struct {
	Channels []Channel `yaml:"channels"`
}

// DefaultChannels is the channel set used when no channels file exists
func DefaultChannels() []Channel {
	return []Channel{
		{Name: consts.TokenStable, File: "app.json", Runtime: consts.ChannelStable, Provider: consts.TokenStable},
		{Name: consts.TokenStaging, File: "app.staging.json", Runtime: consts.ChannelStable, Provider: consts.TokenStaging},
	}
}

// LoadChannels reads the channels file, falling back to the default set
// when the file does not exist. Missing per-channel fields get derived
// defaults.
func LoadChannels(path string) ([]Channel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultChannels(), nil
		}
		return nil, types.WrapError(err, fmt.Sprintf("reading %s", path))
	}

	var file channelsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, types.WrapError(err, fmt.Sprintf("parsing %s", path))
	}
	if len(file.Channels) == 0 {
		return nil, types.WrapError(types.ErrConfigInvalid, fmt.Sprintf("%s lists no channels", path))
	}

	for i := range file.Channels {
		ch := &file.Channels[i]
		if ch.Name == "" {
			return nil, types.WrapError(types.ErrConfigInvalid, fmt.Sprintf("%s: channel %d has no name", path, i))
		}
		if ch.File == "" {
			if ch.Name == consts.TokenStable {
				ch.File = "app.json"
			} else {
				ch.File = fmt.Sprintf("app.%s.json", ch.Name)
			}
		}
		if ch.Runtime == "" {
			ch.Runtime = consts.ChannelStable
		}
		if ch.Provider == "" {
			ch.Provider = consts.TokenStable
		}
	}

	return file.Channels, nil
}
