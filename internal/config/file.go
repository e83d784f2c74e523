package config

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// fileSchema constrains config.cue. Unknown fields are rejected.
const fileSchema = `
backend?:  "file" | "sqlite"
file?:     string
database?: string
log?: close({
	file?:    string
	journal?: bool
})
`

type fileConfig struct {
	Backend  string `json:"backend"`
	File     string `json:"file"`
	Database string `json:"database"`
	Log      struct {
		File    string `json:"file"`
		Journal *bool  `json:"journal"`
	} `json:"log"`
}

// loadFile applies config.cue if present. A missing file is not an error.
func (c *Config) loadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	fc, err := parseFile(path, content)
	if err != nil {
		return err
	}

	if fc.Backend != "" {
		c.Backend = fc.Backend
	}
	if fc.File != "" {
		c.FilePath = c.Resolve(fc.File)
	}
	if fc.Database != "" {
		c.DatabasePath = c.Resolve(fc.Database)
	}
	if fc.Log.File != "" {
		c.LogFile = c.Resolve(fc.Log.File)
	}
	if fc.Log.Journal != nil {
		c.Journal = *fc.Log.Journal
	}
	return nil
}

func parseFile(path string, content []byte) (fileConfig, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString("close({" + fileSchema + "})")
	if err := schema.Err(); err != nil {
		return fileConfig{}, fmt.Errorf("config schema: %w", err)
	}

	value := ctx.CompileBytes(content, cue.Filename(path))
	if err := value.Err(); err != nil {
		return fileConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fileConfig{}, fmt.Errorf("invalid %s: %w", path, err)
	}

	var fc fileConfig
	if err := value.Decode(&fc); err != nil {
		return fileConfig{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return fc, nil
}
