package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

const (
	upMarker             = "-- +goose Up"
	downMarker           = "-- +goose Down"
	statementBeginMarker = "-- +goose StatementBegin"
	statementEndMarker   = "-- +goose StatementEnd"
	versionLayout        = "20060102150405"
)

var (
	fileNameRe  = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	unsafeRunRe = regexp.MustCompile(`[^a-z0-9_]+`)
	createRe    = regexp.MustCompile(`^create_([a-z0-9_]+)$`)
)

// File is one goose SQL migration on disk.
type File struct {
	Version string
	Name    string
	Path    string
}

// ListDir returns the SQL migrations in dir ordered by version. Names that do
// not follow <version>_<name>.sql are reported as errors.
func ListDir(dir string) ([]File, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		m := fileNameRe.FindStringSubmatch(entry.Name())
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected %s_name.sql)", entry.Name(), versionLayout)
		}
		files = append(files, File{Version: m[1], Name: m[2], Path: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// ValidateDir checks names, version uniqueness and the goose markers of every
// migration in dir. An empty directory is valid.
func ValidateDir(dir string) error {
	files, err := ListDir(dir)
	if err != nil {
		return err
	}
	for i, f := range files {
		if i > 0 && files[i-1].Version == f.Version {
			return fmt.Errorf("duplicate migration version %s in %q and %q", f.Version, filepath.Base(files[i-1].Path), filepath.Base(f.Path))
		}
		if err := validateBody(f); err != nil {
			return err
		}
	}
	return nil
}

func validateBody(f File) error {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("read file %q: %w", f.Path, err)
	}
	body := string(b)
	base := filepath.Base(f.Path)

	up := strings.Index(body, upMarker)
	if up < 0 {
		return fmt.Errorf("migration %q missing %q", base, upMarker)
	}
	down := strings.Index(body, downMarker)
	if down < 0 {
		return fmt.Errorf("migration %q missing %q", base, downMarker)
	}
	if down < up {
		return fmt.Errorf("migration %q declares Down before Up", base)
	}
	if strings.Count(body, statementBeginMarker) != strings.Count(body, statementEndMarker) {
		return fmt.Errorf("migration %q has unbalanced StatementBegin/StatementEnd", base)
	}
	return nil
}

// CreateSQLMigration writes an empty goose migration named
// <dir>/<YYYYMMDDHHMMSS>_<name>.sql. Names of the form create_<table>
// are scaffolded with the table's create and drop statements.
func CreateSQLMigration(dir, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now().UTC())
}

func createSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", now.Format(versionLayout), safe))
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("migration already exists: %s", path)
	}
	if err := os.WriteFile(path, []byte(scaffold(safe)), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = unsafeRunRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

func scaffold(name string) string {
	up, down := "-- "+name, "-- rollback "+name
	if m := createRe.FindStringSubmatch(name); m != nil {
		up = fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s_id BIGSERIAL PRIMARY KEY\n);", m[1], strings.TrimSuffix(m[1], "s"))
		down = fmt.Sprintf("DROP TABLE IF EXISTS %s;", m[1])
	}
	return strings.Join([]string{
		upMarker, statementBeginMarker, up, statementEndMarker, "",
		downMarker, statementBeginMarker, down, statementEndMarker, "",
	}, "\n")
}
