package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"timetable-api/models"

	"gopkg.in/yaml.v3"
)

// LoadSnapshotFile reads an entity snapshot from a .json, .yaml/.yml or .xlsx
// file and validates it.
func LoadSnapshotFile(path string) (*models.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	data, err := DecodeSnapshot(filepath.Ext(path), raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return models.NewSnapshot(data)
}

// DecodeSnapshot decodes raw snapshot bytes; ext selects the format.
func DecodeSnapshot(ext string, raw []byte) (models.SnapshotData, error) {
	var data models.SnapshotData
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(raw, &data); err != nil {
			return data, models.Invalidf("malformed json snapshot: %v", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return data, models.Invalidf("malformed yaml snapshot: %v", err)
		}
	case ".xlsx":
		d, err := NewWorkbookService().ReadSnapshot(bytes.NewReader(raw))
		if err != nil {
			return data, models.Invalidf("%v", err)
		}
		data = d
	default:
		return data, models.Invalidf("unsupported snapshot format %q", ext)
	}
	return data, nil
}

// LoadLecturesFile reads booked lectures from a JSON array.
func LoadLecturesFile(path string) ([]models.BookedLecture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bookings: %w", err)
	}
	var lectures []models.BookedLecture
	if err := json.Unmarshal(raw, &lectures); err != nil {
		return nil, models.Invalidf("malformed bookings file %s: %v", path, err)
	}
	return lectures, nil
}
