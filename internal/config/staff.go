package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"meetingroom/internal/models"
)

// staffFile is the document form of a staff file: either a bare list or
// a mapping with a "staff" key. JSON files parse as YAML.
type staffFile struct {
	Staff []models.Staff `yaml:"staff"`
}

// LoadStaffFile reads a YAML or JSON staff list
func LoadStaffFile(filePath string) ([]models.Staff, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read staff file: %w", err)
	}

	var list []models.Staff
	if err := yaml.Unmarshal(data, &list); err == nil {
		return filterStaff(list), nil
	}

	var doc staffFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse staff file: %w", err)
	}
	return filterStaff(doc.Staff), nil
}

func filterStaff(list []models.Staff) []models.Staff {
	out := make([]models.Staff, 0, len(list))
	for _, s := range list {
		if s.StaffCode == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
