// cmd/tools/catalog-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"visa-tracker/pkg/catalog"
)

const defaultCatalogPath = "configs/catalog.json"

func main() {
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	initPath := initCmd.String("path", defaultCatalogPath, "Path to catalog file")
	initForce := initCmd.Bool("force", false, "Overwrite an existing catalog file")

	// Add command flags
	addPath := addCmd.String("path", defaultCatalogPath, "Path to catalog file")
	kind := addCmd.String("kind", "", "Entry kind (university or course)")
	name := addCmd.String("name", "", "Display name (e.g., RMIT)")
	logo := addCmd.String("logo", "", "Logo file name under /logos/ (universities only)")

	// Update command flags
	updatePath := updateCmd.String("path", defaultCatalogPath, "Path to catalog file")
	updateName := updateCmd.String("university", "", "University to update")
	field := updateCmd.String("field", "", "Field to update (name, logo)")
	value := updateCmd.String("value", "", "New value for the field")

	validatePath := validateCmd.String("path", defaultCatalogPath, "Path to catalog file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		initCmd.Parse(os.Args[2:])
		if err := initCatalog(*initPath, *initForce); err != nil {
			fmt.Printf("Error initialising catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote built-in catalog to %s\n", *initPath)

	case "add":
		addCmd.Parse(os.Args[2:])
		if *kind == "" || *name == "" {
			fmt.Println("Error: kind and name are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		if err := addEntry(*addPath, *kind, *name, *logo); err != nil {
			fmt.Printf("Error adding %s: %v\n", *kind, err)
			os.Exit(1)
		}
		fmt.Printf("Added %s: %s\n", *kind, *name)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *updateName == "" || *field == "" || *value == "" {
			fmt.Println("Error: university, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateUniversity(*updatePath, *updateName, *field, *value); err != nil {
			fmt.Printf("Error updating university: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated university %s, field %s to %s\n", *updateName, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateCatalog(*validatePath); err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func initCatalog(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}
	f := catalog.Builtin().Export()
	f.LastUpdated = time.Now().Format(time.RFC3339)
	return f.Save(path)
}

func addEntry(path, kind, name, logo string) error {
	f, err := catalog.LoadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		f = &catalog.File{Version: "1.0.0"}
	}

	name = strings.TrimSpace(name)
	switch kind {
	case "university":
		for _, u := range f.Universities {
			if u.Name == name {
				return fmt.Errorf("university %s already exists", name)
			}
		}
		if logo == "" {
			logo = name + ".png"
		}
		f.Universities = append(f.Universities, catalog.University{Name: name, Logo: logo})
	case "course":
		for _, c := range f.Courses {
			if c == name {
				return fmt.Errorf("course %s already exists", name)
			}
		}
		f.Courses = append(f.Courses, name)
	default:
		return fmt.Errorf("unknown kind: %s", kind)
	}

	f.LastUpdated = time.Now().Format(time.RFC3339)
	return f.Save(path)
}

func updateUniversity(path, name, field, value string) error {
	f, err := catalog.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	found := false
	for i := range f.Universities {
		if f.Universities[i].Name != name {
			continue
		}
		found = true
		switch field {
		case "name":
			f.Universities[i].Name = strings.TrimSpace(value)
		case "logo":
			f.Universities[i].Logo = value
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		break
	}
	if !found {
		return fmt.Errorf("university %s not found", name)
	}

	f.LastUpdated = time.Now().Format(time.RFC3339)
	return f.Save(path)
}

func validateCatalog(path string) error {
	f, err := catalog.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(f.Universities) == 0 {
		return fmt.Errorf("catalog contains no universities")
	}
	if len(f.Courses) == 0 {
		return fmt.Errorf("catalog contains no courses")
	}

	seen := make(map[string]bool)
	for _, u := range f.Universities {
		if strings.TrimSpace(u.Name) == "" {
			return fmt.Errorf("university missing required field: name")
		}
		if seen[u.Name] {
			return fmt.Errorf("duplicate university: %s", u.Name)
		}
		seen[u.Name] = true
		if u.Logo == "" {
			return fmt.Errorf("university %s missing required field: logo", u.Name)
		}
	}

	seen = make(map[string]bool)
	for _, c := range f.Courses {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("blank course name")
		}
		if seen[c] {
			return fmt.Errorf("duplicate course: %s", c)
		}
		seen[c] = true
	}

	fmt.Printf("Catalog validation passed. Found %d universities and %d courses.\n", len(f.Universities), len(f.Courses))
	return nil
}

func help() {
	fmt.Print(`
Usage: catalog-updater <command> [flags]

Commands:
  init     Write the built-in catalog to a file
  add      Add a university or course
  update   Update a university's name or logo
  validate Validate the catalog file
  help     Show this help message

Examples:
  catalog-updater init -path configs/catalog.json
  catalog-updater add -kind university -name "Torrens University" -logo "Torrens University.png"
  catalog-updater add -kind course -name "Master of Data Science"
  catalog-updater update -university RMIT -field logo -value RMIT.svg
  catalog-updater validate -path configs/catalog.json

Use 'catalog-updater <command> -h' for more information about a command.
` + "\n")
}
