// pkg/catalog/schema.go
package catalog

// File is the on-disk catalog layout read by Load and written by the catalog-updater tool.
type File struct {
	Version      string       `json:"version"`
	LastUpdated  string       `json:"lastUpdated"`
	Universities []University `json:"universities"`
	Courses      []string     `json:"courses"`
}

type University struct {
	Name string `json:"name"`
	// Logo is a file name under /logos/.
	Logo string `json:"logo"`
}
