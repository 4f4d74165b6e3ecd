package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
)

type ExportData struct {
	RunMetadata
	Times  []float64 `json:"times"`
	Thetas []float64 `json:"thetas"`
}

// Export loads a stored run with its theta series.
func Export(st Store, runID string) (*ExportData, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	times, thetas, err := st.LoadThetas(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{RunMetadata: *meta, Times: times, Thetas: thetas}, nil
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteCSV writes the theta series as time,theta rows.
func WriteCSV(w io.Writer, data *ExportData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "theta"}); err != nil {
		return err
	}
	for i := range data.Thetas {
		if err := cw.Write([]string{
			strconv.FormatFloat(data.Times[i], 'g', -1, 64),
			strconv.FormatFloat(data.Thetas[i], 'g', -1, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
