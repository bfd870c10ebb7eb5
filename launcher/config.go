package launcher

import (
	"errors"
	"fmt"
	"io/fs"
	"kucukaslan/necoport/domain"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ConfigFileName is the project file the launcher searches for
const ConfigFileName = ".necoport.yaml"

var (
	ErrConfigNotFound  = errors.New(ConfigFileName + " not found")
	ErrServiceNotFound = errors.New("service not found in " + ConfigFileName)
)

// ServiceConfig is one entry under services: in the project file
type ServiceConfig struct {
	Command string                     `yaml:"command"`
	Cwd     string                     `yaml:"cwd"`
	Ports   map[string]domain.PortHint `yaml:"ports"`
	Env     map[string]string          `yaml:"env"`
}

// ProjectConfig is a parsed project file. BaseDir is the directory it was found in.
type ProjectConfig struct {
	Services map[string]ServiceConfig
	BaseDir  string

	order []string
}

// UnmarshalYAML keeps services in file order so RunAll starts them top to bottom.
func (c *ProjectConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Services yaml.Node `yaml:"services"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Services = make(map[string]ServiceConfig)
	c.order = nil
	if raw.Services.Kind == 0 {
		return nil
	}
	if raw.Services.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: services must be a mapping", raw.Services.Line)
	}

	for i := 0; i+1 < len(raw.Services.Content); i += 2 {
		name := raw.Services.Content[i].Value
		var svc ServiceConfig
		if err := raw.Services.Content[i+1].Decode(&svc); err != nil {
			return fmt.Errorf("service %s: %w", name, err)
		}
		if _, dup := c.Services[name]; !dup {
			c.order = append(c.order, name)
		}
		c.Services[name] = svc
	}
	return nil
}

// ParseConfig decodes a project file. baseDir anchors relative cwd entries.
func ParseConfig(data []byte, baseDir string) (*ProjectConfig, error) {
	cfg := &ProjectConfig{Services: map[string]ServiceConfig{}}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigFileName, err)
	}
	cfg.BaseDir = baseDir
	return cfg, nil
}

// FindConfig looks for the project file in start and then in each parent directory.
func FindConfig(start string) (*ProjectConfig, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}

	for {
		data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
		switch {
		case err == nil:
			return ParseConfig(data, dir)
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrConfigNotFound
		}
		dir = parent
	}
}

// ServiceNames lists services in the order the file declares them.
func (c *ProjectConfig) ServiceNames() []string {
	return append([]string(nil), c.order...)
}

// Service resolves one configured service into something Run can start.
func (c *ProjectConfig) Service(name string) (Service, error) {
	svc, ok := c.Services[name]
	if !ok {
		return Service{}, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}

	dir := svc.Cwd
	if dir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(c.BaseDir, dir)
	}

	return Service{
		Name:    name,
		Command: svc.Command,
		Dir:     dir,
		Ports:   svc.Ports,
		Env:     svc.Env,
	}, nil
}
