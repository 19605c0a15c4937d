// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	logoDir     = "/logos/"
	defaultLogo = "/logos/Undefined.png"
)

// Catalog is the fixed list of universities and courses offered in the record form.
// It is immutable after construction and safe for concurrent use.
type Catalog struct {
	version      string
	lastUpdated  string
	universities []string
	logos        map[string]string
	courses      []string
	courseSet    map[string]struct{}
}

// New builds a catalog from a catalog file. Names are trimmed, blanks and duplicates dropped,
// and both lists sorted.
func New(f File) *Catalog {
	c := &Catalog{
		version:     f.Version,
		lastUpdated: f.LastUpdated,
		logos:       make(map[string]string, len(f.Universities)),
		courseSet:   make(map[string]struct{}, len(f.Courses)),
	}

	for _, u := range f.Universities {
		name := strings.TrimSpace(u.Name)
		if name == "" {
			continue
		}
		if _, dup := c.logos[name]; dup {
			continue
		}
		c.logos[name] = strings.TrimSpace(u.Logo)
		c.universities = append(c.universities, name)
	}
	sort.Strings(c.universities)

	for _, course := range f.Courses {
		name := strings.TrimSpace(course)
		if name == "" {
			continue
		}
		if _, dup := c.courseSet[name]; dup {
			continue
		}
		c.courseSet[name] = struct{}{}
		c.courses = append(c.courses, name)
	}
	sort.Strings(c.courses)

	return c
}

// LoadFile reads a catalog file without normalizing it.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return &f, nil
}

// Load reads a catalog file and builds a Catalog from it.
func Load(path string) (*Catalog, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if len(f.Universities) == 0 || len(f.Courses) == 0 {
		return nil, fmt.Errorf("catalog %s must list at least one university and one course", path)
	}
	return New(*f), nil
}

// Save writes f as indented JSON, creating the parent directory.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

// Export returns the catalog in file form.
func (c *Catalog) Export() File {
	f := File{Version: c.version, LastUpdated: c.lastUpdated, Courses: c.Courses()}
	for _, name := range c.universities {
		f.Universities = append(f.Universities, University{Name: name, Logo: c.logos[name]})
	}
	return f
}

func (c *Catalog) Version() string { return c.version }

// Universities returns the sorted university names.
func (c *Catalog) Universities() []string {
	return append([]string(nil), c.universities...)
}

// Courses returns the sorted, de-duplicated course names.
func (c *Catalog) Courses() []string {
	return append([]string(nil), c.courses...)
}

func (c *Catalog) HasUniversity(name string) bool {
	_, ok := c.logos[name]
	return ok
}

func (c *Catalog) HasCourse(name string) bool {
	_, ok := c.courseSet[name]
	return ok
}

// LogoFor returns the logo path of a university, or the placeholder logo.
func (c *Catalog) LogoFor(name string) string {
	if file := c.logos[name]; file != "" {
		return logoDir + file
	}
	return defaultLogo
}

// Entry pairs a catalog name with its display asset.
type Entry struct {
	Name  string `json:"name"`
	Asset string `json:"asset"`
}

// View is the catalog as served to clients.
type View struct {
	Version      string  `json:"version"`
	Universities []Entry `json:"universities"`
	Courses      []Entry `json:"courses"`
}

func (c *Catalog) View() View {
	v := View{
		Version:      c.version,
		Universities: make([]Entry, 0, len(c.universities)),
		Courses:      make([]Entry, 0, len(c.courses)),
	}
	for _, name := range c.universities {
		v.Universities = append(v.Universities, Entry{Name: name, Asset: c.LogoFor(name)})
	}
	for _, name := range c.courses {
		v.Courses = append(v.Courses, Entry{Name: name, Asset: CourseIcon(name)})
	}
	return v
}

// iconRules are checked in order; the first rule with a matching keyword wins.
var iconRules = []struct {
	keywords []string
	icon     string
}{
	{[]string{"it", "computer", "cyber", "data"}, "it.png"},
	{[]string{"business", "commerce", "mba", "accounting", "marketing"}, "business.png"},
	{[]string{"engineering"}, "engineering.png"},
	{[]string{"science"}, "science.png"},
	{[]string{"nursing", "health"}, "health.png"},
	{[]string{"education"}, "education.png"},
	{[]string{"law"}, "law.png"},
	{[]string{"art", "design"}, "arts.png"},
	{[]string{"architecture"}, "architecture.png"},
	{[]string{"psychology"}, "psychology.png"},
	{[]string{"diploma", "certificate"}, "diploma.png"},
	{[]string{"phd"}, "phd.png"},
}

// CourseIcon picks an icon path for a course by keyword.
func CourseIcon(course string) string {
	if course == "" {
		return "/course-icons/default.png"
	}
	lower := strings.ToLower(course)
	for _, rule := range iconRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return "/course-icons/" + rule.icon
			}
		}
	}
	return "/course-icons/default.png"
}
