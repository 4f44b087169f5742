package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"

	"github.com/agentstation/labelsync/pkg/errors"
)

// ClassSet maps class ids to human-readable names. It is always injected
// (config, data.yaml) rather than hardcoded in the validator.
type ClassSet struct {
	names map[int]string
}

// NewClassSet returns a class set for the given mapping.
func NewClassSet(names map[int]string) (ClassSet, error) {
	if len(names) == 0 {
		return ClassSet{}, errors.NewConfigError("classes", "class set is empty", nil)
	}
	cp := make(map[int]string, len(names))
	for id, name := range names {
		if id < 0 {
			return ClassSet{}, errors.NewConfigError("classes", fmt.Sprintf("negative class id %d", id), nil)
		}
		cp[id] = name
	}
	return ClassSet{names: cp}, nil
}

// ParseClassMap builds a class set from string keys, as found in config
// files and environment variables.
func ParseClassMap(raw map[string]string) (ClassSet, error) {
	names := make(map[int]string, len(raw))
	for key, name := range raw {
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return ClassSet{}, errors.NewConfigError("classes", fmt.Sprintf("class id %q is not an integer", key), err)
		}
		names[id] = name
	}
	return NewClassSet(names)
}

// Has reports whether id is a declared class.
func (c ClassSet) Has(id int) bool {
	_, ok := c.names[id]
	return ok
}

// Name returns the name of a class, or its id when undeclared.
func (c ClassSet) Name(id int) string {
	if name, ok := c.names[id]; ok {
		return name
	}
	return strconv.Itoa(id)
}

// IDs returns the declared class ids in ascending order.
func (c ClassSet) IDs() []int {
	ids := make([]int, 0, len(c.names))
	for id := range c.names {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Len returns the number of declared classes.
func (c ClassSet) Len() int {
	return len(c.names)
}

// Resolve maps class references (ids or names) to ids.
func (c ClassSet) Resolve(refs []string) ([]int, error) {
	ids := make([]int, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if id, err := strconv.Atoi(ref); err == nil && c.Has(id) {
			ids = append(ids, id)
			continue
		}
		found := false
		for id, name := range c.names {
			if name == ref {
				ids = append(ids, id)
				found = true
				break
			}
		}
		if !found {
			return nil, errors.NewConfigError("classes", fmt.Sprintf("unknown class %q", ref), nil)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

// dataFile is the subset of a YOLO data.yaml that carries the class names.
// names is either a list (index = id) or a map of id to name.
type dataFile struct {
	Names yaml.MapSlice `yaml:"names"`
}

type dataFileList struct {
	Names []string `yaml:"names"`
}

// LoadClassSet reads the class names from a YOLO data.yaml.
func LoadClassSet(fsys afero.Fs, path string) (ClassSet, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return ClassSet{}, errors.NewConfigError("classes", "cannot read "+path, errors.WrapIO("read", path, err))
	}
	return ParseDataYAML(path, data)
}

// ParseDataYAML extracts the class set from data.yaml content.
func ParseDataYAML(path string, data []byte) (ClassSet, error) {
	var list dataFileList
	if err := yaml.Unmarshal(data, &list); err == nil && len(list.Names) > 0 {
		names := make(map[int]string, len(list.Names))
		for i, name := range list.Names {
			names[i] = name
		}
		return NewClassSet(names)
	}

	var mapped dataFile
	if err := yaml.Unmarshal(data, &mapped); err != nil {
		return ClassSet{}, errors.NewConfigError("classes", "invalid data.yaml", errors.WrapParse("yaml", path, err))
	}
	raw := make(map[string]string, len(mapped.Names))
	for _, item := range mapped.Names {
		raw[fmt.Sprint(item.Key)] = fmt.Sprint(item.Value)
	}
	if len(raw) == 0 {
		return ClassSet{}, errors.NewConfigError("classes", path+" declares no names", nil)
	}
	return ParseClassMap(raw)
}
