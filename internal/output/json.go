package output

import (
	"encoding/json"

	"github.com/nsistat/udpstat/internal/pipeline"
)

func ToJSON(s pipeline.Snapshot) (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
