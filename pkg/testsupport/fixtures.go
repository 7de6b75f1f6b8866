package testsupport

import (
	"encoding/json"
	"os"
)

func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func WriteGolden(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
