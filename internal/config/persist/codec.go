package persist

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/schema"
)

// codec serializes configuration for one file format.
type codec interface {
	// Decode parses data into a partial configuration tree.
	Decode(data []byte) (*schema.Patch, error)

	// Encode produces the bytes to store for cfg. prev is the current
	// stored document (nil when none exists); codecs that can patch the
	// raw document use it to keep fields they do not recognize.
	Encode(cfg schema.Config, prev []byte) ([]byte, error)
}

// codecFor picks a codec by file extension. JSON is the canonical format
// and the default for unknown extensions.
func codecFor(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return tomlCodec{}
	case ".yaml", ".yml":
		return yamlCodec{}
	default:
		return jsonCodec{}
	}
}

type jsonCodec struct{}

func (jsonCodec) Decode(data []byte) (*schema.Patch, error) {
	var p schema.Patch
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing json settings: %w", err)
	}
	return &p, nil
}

func (jsonCodec) Encode(cfg schema.Config, prev []byte) ([]byte, error) {
	known, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return mergeKnownFields(prev, known)
}

type tomlCodec struct{}

func (tomlCodec) Decode(data []byte) (*schema.Patch, error) {
	var p schema.Patch
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing toml settings: %w", err)
	}
	return &p, nil
}

func (tomlCodec) Encode(cfg schema.Config, _ []byte) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return data, nil
}

type yamlCodec struct{}

func (yamlCodec) Decode(data []byte) (*schema.Patch, error) {
	var p schema.Patch
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing yaml settings: %w", err)
	}
	return &p, nil
}

func (yamlCodec) Encode(cfg schema.Config, _ []byte) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return data, nil
}
