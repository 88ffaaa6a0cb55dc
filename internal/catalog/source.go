package catalog

import (
	"bytes"
	"context"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/justestif/moodmatch/internal/profile"
)

//go:embed data/profiles.yaml
var dataFS embed.FS

const defaultCatalogFile = "data/profiles.yaml"

// Source formats accepted by LoadFile.
const (
	FormatCSV  = "csv"
	FormatTSV  = "tsv"
	FormatYAML = "yaml"
)

// ErrEmptySource is returned when a source holds no profiles at all.
var ErrEmptySource = errors.New("catalog source has no profiles")

// document is the top-level shape of a YAML catalog.
type document struct {
	Profiles []profile.Record `yaml:"profiles"`
}

// RowSource supplies tabular profile rows, for example from a database.
type RowSource interface {
	Rows(ctx context.Context) ([][]string, error)
}

// ReadCSV reads comma separated rows. A first row whose label column reads "label" is treated as a header.
// Rows may have varying field counts; short rows are rejected later by FromRows.
func ReadCSV(r io.Reader) ([][]string, error) {
	return readDelimited(r, ',')
}

// ReadTSV reads tab separated rows with the same rules as ReadCSV.
func ReadTSV(r io.Reader) ([][]string, error) {
	return readDelimited(r, '\t')
}

func readDelimited(r io.Reader, comma rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	// leading-space trimming would swallow empty tab separated fields
	reader.TrimLeadingSpace = comma != '\t'

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "label") {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, ErrEmptySource
	}
	return rows, nil
}

// ReadYAML decodes a structured catalog document. Unknown fields are rejected.
func ReadYAML(r io.Reader) ([]profile.Record, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptySource
		}
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if len(doc.Profiles) == 0 {
		return nil, ErrEmptySource
	}
	return doc.Profiles, nil
}

// WriteYAML encodes profiles as a structured catalog document.
func WriteYAML(w io.Writer, profiles []profile.Profile) error {
	doc := document{Profiles: make([]profile.Record, len(profiles))}
	for i, p := range profiles {
		doc.Profiles[i] = p.Record()
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// Default returns the catalog embedded in the binary.
func Default(opts ...Option) (*Catalog, error) {
	data, err := dataFS.ReadFile(defaultCatalogFile)
	if err != nil {
		return nil, fmt.Errorf("reading embedded catalog: %w", err)
	}
	records, err := ReadYAML(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing embedded catalog: %w", err)
	}
	return FromRecords(records, opts...)
}

// DetectFormat picks a format from a file extension, defaulting to YAML.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".tsv":
		return FormatTSV
	default:
		return FormatYAML
	}
}

// LoadFile reads a catalog from disk. An empty format is detected from the extension.
func LoadFile(path, format string, opts ...Option) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	if format == "" {
		format = DetectFormat(path)
	}

	switch strings.ToLower(format) {
	case FormatCSV, FormatTSV:
		read := ReadCSV
		if strings.EqualFold(format, FormatTSV) {
			read = ReadTSV
		}
		rows, err := read(f)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		c, err := FromRows(rows, opts...)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		return c, nil
	case FormatYAML, "yml":
		records, err := ReadYAML(f)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		c, err := FromRecords(records, opts...)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown catalog format %q", format)
	}
}
