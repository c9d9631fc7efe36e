// Package fallback generates synthetic payloads shaped exactly like the
// backend's real responses. The console renders these when the backend is
// unreachable, and eagerly at startup so the first frame is never empty.
// Values are randomized inside domain-plausible ranges; shape, not value,
// is the contract.
package fallback

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/kweiss/vaultmon/internal/api"
)

// Default sensor identifiers used for synthetic environment readings.
var sensorIDs = []string{"SENSOR-A1", "SENSOR-B2", "SENSOR-C3"}

// Environment returns one plausible reading per archive-room sensor.
// Temperature stays within 18-30 °C and humidity within 30-70 %, the bands
// the real sensors report under normal operation.
func Environment() []api.EnvironmentReading {
	now := time.Now()
	readings := make([]api.EnvironmentReading, 0, len(sensorIDs))
	for i, id := range sensorIDs {
		readings = append(readings, api.EnvironmentReading{
			ID:             i + 1,
			SensorID:       id,
			Temperature:    round1(between(18, 30)),
			Humidity:       round1(between(30, 70)),
			LightIntensity: round1(between(150, 450)),
			Timestamp:      now.Add(-time.Duration(rand.Intn(60)) * time.Second).Format(time.RFC3339),
		})
	}
	return readings
}

// Thresholds returns the backend's default comfort bands.
func Thresholds() api.EnvironmentThresholds {
	return api.EnvironmentThresholds{
		Temperature:    api.ThresholdRange{Min: 18, Max: 25},
		Humidity:       api.ThresholdRange{Min: 40, Max: 60},
		LightIntensity: api.ThresholdRange{Min: 100, Max: 500},
	}
}

// Performance returns plausible host metrics for the system page.
func Performance() api.SystemPerformance {
	memTotal := 16.0
	memUsage := between(20, 75)
	diskTotal := 512.0
	diskUsage := between(30, 70)
	return api.SystemPerformance{
		CPUUsage:           round1(between(5, 60)),
		MemoryUsage:        round1(memUsage),
		MemoryTotal:        memTotal,
		MemoryUsed:         round1(memTotal * memUsage / 100),
		DiskUsage:          round1(diskUsage),
		DiskTotal:          diskTotal,
		DiskUsed:           round1(diskTotal * diskUsage / 100),
		NetworkConnections: 20 + rand.Intn(60),
		NetworkRxBytes:     int64(rand.Intn(1 << 30)),
		NetworkTxBytes:     int64(rand.Intn(1 << 29)),
		ProcessCount:       120 + rand.Intn(180),
		LoadAverage:        round2(between(0.1, 2.5)),
		DBConnections:      1,
		DBStatus:           "connected",
		Timestamp:          time.Now().Format(time.RFC3339),
	}
}

// SystemInfo identifies the monitored installation.
func SystemInfo() api.SystemInfo {
	return api.SystemInfo{
		Name:        "Archive Warehouse Monitoring",
		Version:     "1.0.0",
		Description: "Environment, RFID and maintenance tracking for archive storage",
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// CollectionConfig returns the backend's default collection configuration.
func CollectionConfig() api.CollectionConfig {
	id := 1
	cfg := api.CollectionConfig{
		ID:             &id,
		SensorInterval: 30,
		RFIDInterval:   10,
		IsPaused:       false,
		UpdatedBy:      "system",
	}
	impact := EstimateImpact(cfg.SensorInterval, cfg.RFIDInterval)
	cfg.PerformanceImpact = &impact
	return cfg
}

// ConfigHistory returns a minimal change history: just the current defaults.
func ConfigHistory() []api.CollectionConfig {
	cfg := CollectionConfig()
	cfg.CreatedAt = time.Now().Add(-24 * time.Hour).Format(time.RFC3339)
	return []api.CollectionConfig{cfg}
}

// EstimateImpact mirrors the backend's load estimate for a pair of intervals.
// Shorter intervals mean more samples per minute and a higher load figure.
func EstimateImpact(sensorInterval, rfidInterval int) api.PerformanceImpact {
	if sensorInterval <= 0 {
		sensorInterval = 30
	}
	if rfidInterval <= 0 {
		rfidInterval = 10
	}
	sensorLoad := 60.0 / float64(sensorInterval)
	rfidLoad := 60.0 / float64(rfidInterval)
	total := sensorLoad + rfidLoad
	level := "low"
	warning := ""
	switch {
	case total > 40:
		level = "high"
		warning = "collection intervals this short may degrade backend responsiveness"
	case total > 15:
		level = "medium"
	}
	return api.PerformanceImpact{
		SensorLoad:        round1(sensorLoad),
		RFIDLoad:          round1(rfidLoad),
		TotalLoad:         round1(total),
		EstimatedCPUUsage: round1(total * 0.45),
		EstimatedMemoryMB: round1(total * 0.18),
		PerformanceLevel:  level,
		Warning:           warning,
	}
}

// CollectionStatus synthesizes a scheduler status consistent with the given
// config, so a paused config never renders as running.
func CollectionStatus(cfg api.CollectionConfig) api.CollectionStatus {
	now := time.Now()
	var status api.CollectionStatus
	status.IsRunning = !cfg.IsPaused
	status.IsPaused = cfg.IsPaused
	status.CurrentConfig.SensorInterval = cfg.SensorInterval
	status.CurrentConfig.RFIDInterval = cfg.RFIDInterval
	if status.IsRunning {
		status.LastCollection = api.LastCollection{
			Sensor: now.Add(-time.Duration(rand.Intn(cfg.SensorInterval+1)) * time.Second).Format(time.RFC3339),
			RFID:   now.Add(-time.Duration(rand.Intn(cfg.RFIDInterval+1)) * time.Second).Format(time.RFC3339),
		}
	}
	status.Performance = api.CollectionPerformance{
		CPUUsage:     round1(between(2, 25)),
		MemoryUsage:  round1(between(15, 55)),
		MemoryUsedMB: round1(between(40, 220)),
	}
	status.Timestamp = now.Format(time.RFC3339)
	return status
}

var maintenanceSeeds = []struct {
	deviceType      string
	maintenanceType string
	description     string
	technician      string
	status          string
	cost            float64
}{
	{api.DeviceSensor, api.MaintenanceCalibration, "Quarterly calibration of temperature probes", "L. Huang", api.StatusScheduled, 120},
	{api.DeviceRFID, api.MaintenanceCorrective, "Replace failing antenna on dock reader", "M. Okafor", api.StatusInProgress, 340},
	{api.DeviceNetwork, api.MaintenanceRoutine, "Inspect switch cabling in stack room 2", "L. Huang", api.StatusCompleted, 0},
	{api.DeviceServer, api.MaintenancePreventive, "Rotate backup drives and verify archives", "J. Svensson", api.StatusScheduled, 80},
	{api.DeviceOther, api.MaintenanceUpgrade, "Install shade film on south-facing windows", "facilities", api.StatusOverdue, 450},
}

// MaintenancePage returns a plausible page of maintenance records.
func MaintenancePage() api.MaintenancePage {
	now := time.Now()
	records := make([]api.MaintenanceRecord, 0, len(maintenanceSeeds))
	for i, seed := range maintenanceSeeds {
		record := api.MaintenanceRecord{
			ID:              i + 1,
			DeviceType:      seed.deviceType,
			MaintenanceType: seed.maintenanceType,
			Description:     seed.description,
			Status:          seed.status,
			Technician:      seed.technician,
			Cost:            seed.cost,
			ScheduledDate:   now.AddDate(0, 0, i*3-6).Format("2006-01-02"),
			CreatedAt:       now.AddDate(0, 0, -30+i).Format(time.RFC3339),
		}
		if seed.status == api.StatusCompleted {
			record.CompletedDate = now.AddDate(0, 0, -2).Format("2006-01-02")
		}
		records = append(records, record)
	}
	return api.MaintenancePage{
		Records: records,
		Pagination: api.Pagination{
			Page:    1,
			PerPage: 20,
			Total:   len(records),
			Pages:   1,
		},
	}
}

// MaintenanceStatistics aggregates counters from a set of records, matching
// the backend's statistics shape.
func MaintenanceStatistics(records []api.MaintenanceRecord) api.MaintenanceStatistics {
	stats := api.MaintenanceStatistics{
		Total:             len(records),
		ByStatus:          map[string]int{},
		ByDeviceType:      map[string]int{},
		ByMaintenanceType: map[string]int{},
	}
	var total, max, min float64
	costCount := 0
	for _, record := range records {
		stats.ByStatus[record.Status]++
		stats.ByDeviceType[record.DeviceType]++
		stats.ByMaintenanceType[record.MaintenanceType]++
		if record.Status == api.StatusOverdue {
			stats.OverdueCount++
		}
		if record.Status == api.StatusScheduled {
			stats.UpcomingCount++
		}
		if record.Cost > 0 {
			if costCount == 0 || record.Cost < min {
				min = record.Cost
			}
			if record.Cost > max {
				max = record.Cost
			}
			total += record.Cost
			costCount++
		}
	}
	stats.CostStatistics = api.CostStatistics{TotalCost: total, MaxCost: max, MinCost: min}
	if costCount > 0 {
		stats.CostStatistics.AvgCost = round2(total / float64(costCount))
	}
	return stats
}

// OverdueMaintenance filters the synthetic records to overdue ones.
func OverdueMaintenance() []api.MaintenanceRecord {
	return recordsWithStatus(api.StatusOverdue)
}

// UpcomingMaintenance filters the synthetic records to scheduled ones.
func UpcomingMaintenance() []api.MaintenanceRecord {
	return recordsWithStatus(api.StatusScheduled)
}

func recordsWithStatus(status string) []api.MaintenanceRecord {
	var out []api.MaintenanceRecord
	for _, record := range MaintenancePage().Records {
		if record.Status == status {
			out = append(out, record)
		}
	}
	return out
}

// NextRecordID returns an id for optimistic local record creation that will
// not collide with ids already shown.
func NextRecordID(records []api.MaintenanceRecord) int {
	next := 1
	for _, record := range records {
		if record.ID >= next {
			next = record.ID + 1
		}
	}
	return next
}

func between(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// Describe labels a synthetic payload's origin for the logbook.
func Describe(what string) string {
	return fmt.Sprintf("backend unavailable, using synthetic %s", what)
}
