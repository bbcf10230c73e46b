// Package config loads the TOML remotes file. Each top-level table defines
// one named remote; the table's "type" field selects the backend kind and
// the remaining keys are backend-specific connection parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// Configuration errors.
var (
	ErrNotFound       = errors.New("configuration file not found")
	ErrRemoteNotFound = errors.New("remote not found")
)

// ValidationError reports an invalid remote definition.
type ValidationError struct {
	Remote string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Remote == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration for remote %q: %s", e.Remote, e.Reason)
}

// Config holds all remote definitions from one configuration file.
type Config struct {
	remotes map[string]Remote
}

// DefaultPath returns the default configuration file location (~/.ftpc.toml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ftpc.toml"
	}
	return filepath.Join(home, ".ftpc.toml")
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes TOML configuration data.
func Parse(data []byte) (*Config, error) {
	var raw map[string]toml.Primitive
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML configuration: %w", err)
	}

	remotes := make(map[string]Remote, len(raw))
	for name, prim := range raw {
		var head struct {
			Type string `toml:"type"`
		}
		if err := md.PrimitiveDecode(prim, &head); err != nil {
			return nil, &ValidationError{Remote: name, Reason: err.Error()}
		}
		if head.Type == "" {
			return nil, &ValidationError{Remote: name, Reason: "missing required 'type' field"}
		}

		remote, err := decodeRemote(name, Type(head.Type), md, prim)
		if err != nil {
			return nil, err
		}
		if err := remote.Validate(); err != nil {
			return nil, err
		}
		remotes[name] = remote
	}

	return &Config{remotes: remotes}, nil
}

// Remote returns the named remote definition.
func (c *Config) Remote(name string) (Remote, error) {
	r, ok := c.remotes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRemoteNotFound, name)
	}
	return r, nil
}

// Remotes returns all remote definitions sorted by name, for the selector.
func (c *Config) Remotes() []Remote {
	result := make([]Remote, 0, len(c.remotes))
	for _, r := range c.remotes {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RemoteName() < result[j].RemoteName()
	})
	return result
}

// Len returns the number of configured remotes.
func (c *Config) Len() int {
	return len(c.remotes)
}

func decodeRemote(name string, t Type, md toml.MetaData, prim toml.Primitive) (Remote, error) {
	var (
		remote Remote
		err    error
	)
	switch t {
	case TypeLocal:
		r := &LocalRemote{}
		err = md.PrimitiveDecode(prim, r)
		r.Name = name
		remote = r
	case TypeFTP:
		r := &FTPRemote{}
		err = md.PrimitiveDecode(prim, r)
		r.Name = name
		remote = r
	case TypeSFTP:
		r := &SFTPRemote{}
		err = md.PrimitiveDecode(prim, r)
		r.Name = name
		remote = r
	case TypeS3:
		r := &S3Remote{}
		err = md.PrimitiveDecode(prim, r)
		r.Name = name
		remote = r
	case TypeAzure:
		r := &AzureRemote{}
		err = md.PrimitiveDecode(prim, r)
		r.Name = name
		remote = r
	default:
		return nil, &ValidationError{Remote: name, Reason: fmt.Sprintf("unknown remote type %q", t)}
	}
	if err != nil {
		return nil, &ValidationError{Remote: name, Reason: err.Error()}
	}
	return remote, nil
}
