// Package backup reads and writes full-board JSON backups.
package backup

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/store"
)

// Version is written into every backup
const Version = "1.0"

const schemaURL = "backup.schema.json"

//go:embed backup.schema.json
var schemaJSON string

// Document is the on-disk backup format
type Document struct {
	Todos          []models.Task     `json:"todos"`
	Projects       []string          `json:"projects"`
	HiddenProjects []string          `json:"hiddenProjects"`
	ProjectColors  map[string]string `json:"projectColors"`
	Version        json.RawMessage   `json:"version"`
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// FileName returns the backup file name for day t
func FileName(t time.Time) string {
	return fmt.Sprintf("taskflow-backup-%s.json", t.Format("2006-01-02"))
}

// Encode writes st as a backup document with 2-space indentation
func Encode(w io.Writer, st models.State) error {
	version, _ := json.Marshal(Version)
	doc := Document{
		Todos:          st.Todos,
		Projects:       st.Projects,
		HiddenProjects: st.HiddenProjects,
		ProjectColors:  st.ProjectColors,
		Version:        version,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// Decode parses and validates a backup document. Structural problems are
// reported as *store.ValidationError.
func Decode(r io.Reader) (models.State, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.State{}, fmt.Errorf("read backup: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return models.State{}, &store.ValidationError{Msg: fmt.Sprintf("invalid JSON: %v", err)}
	}

	schema, err := compileSchema()
	if err != nil {
		return models.State{}, fmt.Errorf("compile backup schema: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return models.State{}, schemaError(err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.State{}, &store.ValidationError{Msg: fmt.Sprintf("invalid backup: %v", err)}
	}
	return models.State{
		Todos:          doc.Todos,
		Projects:       doc.Projects,
		HiddenProjects: doc.HiddenProjects,
		ProjectColors:  doc.ProjectColors,
	}, nil
}

// Export writes the store's board into dir and returns the file path
func Export(s *store.Store, dir string, now time.Time) (string, error) {
	path := filepath.Join(dir, FileName(now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	if err := Encode(f, s.Snapshot()); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close backup: %w", err)
	}
	log.Info().Str("path", path).Msg("backup: exported")
	return path, nil
}

// Import replaces the store's board with the backup at path
func Import(s *store.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	st, err := Decode(f)
	if err != nil {
		return err
	}
	// a failed save still leaves the imported board in memory
	err = s.Replace(st)
	if err != nil && !store.IsStorageWarning(err) {
		return err
	}
	log.Info().Str("path", path).Int("todos", len(st.Todos)).Msg("backup: imported")
	return err
}

// schemaError reduces a schema failure to its first leaf cause
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &store.ValidationError{Msg: err.Error()}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	field = strings.ReplaceAll(field, "/", ".")
	return &store.ValidationError{Field: field, Msg: leaf.Message}
}
