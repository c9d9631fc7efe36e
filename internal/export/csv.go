// Package export writes maintenance records to CSV so operators can hand
// reports to facilities management without backend access.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kweiss/vaultmon/internal/api"
)

var csvHeader = []string{
	"id", "device_type", "maintenance_type", "description",
	"status", "scheduled_date", "completed_date", "technician", "cost", "notes",
}

// MaintenanceCSV writes records to a timestamped CSV file under dir and
// returns the file path.
func MaintenanceCSV(dir string, records []api.MaintenanceRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: ensure dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("maintenance-%s.csv", time.Now().Format("20060102-150405")))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return "", fmt.Errorf("export: write header: %w", err)
	}
	for _, record := range records {
		row := []string{
			strconv.Itoa(record.ID),
			record.DeviceType,
			record.MaintenanceType,
			record.Description,
			record.Status,
			record.ScheduledDate,
			record.CompletedDate,
			record.Technician,
			strconv.FormatFloat(record.Cost, 'f', 2, 64),
			record.Notes,
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("export: write record %d: %w", record.ID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("export: flush: %w", err)
	}
	return path, nil
}
