package api

// Payload types mirror the backend's JSON field names exactly. The backend
// mixes camelCase (collection endpoints) and snake_case (environment,
// maintenance, performance endpoints); the structs follow suit so live and
// synthetic data are interchangeable downstream.

// Envelope is the conventional backend response wrapper. A response with
// Success=false is treated the same as a transport failure by callers that
// fall back to synthetic data.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Health is the /api/health response.
type Health struct {
	Status    string `json:"status"`
	Database  string `json:"database,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Healthy reports whether the backend considers itself operational.
func (h Health) Healthy() bool { return h.Status == "healthy" }

// SystemInfo is the /api/system/info response.
type SystemInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// SystemPerformance is the /api/system/performance payload.
type SystemPerformance struct {
	CPUUsage           float64 `json:"cpu_usage"`
	MemoryUsage        float64 `json:"memory_usage"`
	MemoryTotal        float64 `json:"memory_total"`
	MemoryUsed         float64 `json:"memory_used"`
	DiskUsage          float64 `json:"disk_usage"`
	DiskTotal          float64 `json:"disk_total"`
	DiskUsed           float64 `json:"disk_used"`
	NetworkConnections int     `json:"network_connections"`
	NetworkRxBytes     int64   `json:"network_rx_bytes"`
	NetworkTxBytes     int64   `json:"network_tx_bytes"`
	ProcessCount       int     `json:"process_count"`
	LoadAverage        float64 `json:"load_average"`
	DBConnections      int     `json:"db_connections"`
	DBStatus           string  `json:"db_status"`
	Timestamp          string  `json:"timestamp"`
}

// EnvironmentReading is one sensor sample from /api/environment/*.
type EnvironmentReading struct {
	ID             int     `json:"id,omitempty"`
	SensorID       string  `json:"sensor_id"`
	Temperature    float64 `json:"temperature"`
	Humidity       float64 `json:"humidity"`
	LightIntensity float64 `json:"light_intensity"`
	Timestamp      string  `json:"timestamp"`
}

// ThresholdRange bounds one environment metric.
type ThresholdRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// EnvironmentThresholds is the configured comfort band for the archive rooms.
type EnvironmentThresholds struct {
	Temperature    ThresholdRange `json:"temperature"`
	Humidity       ThresholdRange `json:"humidity"`
	LightIntensity ThresholdRange `json:"light_intensity"`
}

// PerformanceImpact estimates the load implied by a collection config.
type PerformanceImpact struct {
	SensorLoad        float64 `json:"sensorLoad"`
	RFIDLoad          float64 `json:"rfidLoad"`
	TotalLoad         float64 `json:"totalLoad"`
	EstimatedCPUUsage float64 `json:"estimatedCpuUsage"`
	EstimatedMemoryMB float64 `json:"estimatedMemoryMB"`
	PerformanceLevel  string  `json:"performanceLevel"`
	Warning           string  `json:"warning,omitempty"`
}

// CollectionConfig is the /api/collection/config payload.
type CollectionConfig struct {
	ID                *int               `json:"id"`
	SensorInterval    int                `json:"sensorInterval"`
	RFIDInterval      int                `json:"rfidInterval"`
	IsPaused          bool               `json:"isPaused"`
	UpdatedBy         string             `json:"updatedBy,omitempty"`
	CreatedAt         string             `json:"createdAt,omitempty"`
	UpdatedAt         string             `json:"updatedAt,omitempty"`
	PerformanceImpact *PerformanceImpact `json:"performanceImpact,omitempty"`
}

// CollectionConfigUpdate is the mutation body for saving a config.
type CollectionConfigUpdate struct {
	SensorInterval *int   `json:"sensorInterval,omitempty"`
	RFIDInterval   *int   `json:"rfidInterval,omitempty"`
	IsPaused       *bool  `json:"isPaused,omitempty"`
	UpdatedBy      string `json:"updatedBy,omitempty"`
}

// LastCollection records when each device class last collected.
type LastCollection struct {
	Sensor string `json:"sensor,omitempty"`
	RFID   string `json:"rfid,omitempty"`
}

// CollectionPerformance is the scheduler's own load report.
type CollectionPerformance struct {
	CPUUsage     float64 `json:"cpuUsage"`
	MemoryUsage  float64 `json:"memoryUsage"`
	MemoryUsedMB float64 `json:"memoryUsedMB"`
}

// CollectionStatus is the /api/collection/status payload (also carried on
// the live websocket feed).
type CollectionStatus struct {
	IsRunning     bool                  `json:"isRunning"`
	IsPaused      bool                  `json:"isPaused"`
	CurrentConfig struct {
		SensorInterval int `json:"sensorInterval"`
		RFIDInterval   int `json:"rfidInterval"`
	} `json:"currentConfig"`
	LastCollection LastCollection        `json:"lastCollection"`
	Performance    CollectionPerformance `json:"performance"`
	Errors         []string              `json:"errors,omitempty"`
	Timestamp      string                `json:"timestamp"`
}

// Maintenance record device types, mirroring the backend constants.
const (
	DeviceRFID    = "rfid"
	DeviceSensor  = "sensor"
	DeviceNetwork = "network"
	DeviceServer  = "server"
	DeviceOther   = "other"
)

// Maintenance record types.
const (
	MaintenanceRoutine     = "routine"
	MaintenancePreventive  = "preventive"
	MaintenanceCorrective  = "corrective"
	MaintenanceUpgrade     = "upgrade"
	MaintenanceCalibration = "calibration"
)

// Maintenance record statuses.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusOverdue    = "overdue"
)

// MaintenanceRecord is one row from /api/maintenance/records.
type MaintenanceRecord struct {
	ID              int     `json:"id,omitempty"`
	DeviceType      string  `json:"device_type"`
	DeviceID        *int    `json:"device_id,omitempty"`
	MaintenanceType string  `json:"maintenance_type"`
	Description     string  `json:"description"`
	Status          string  `json:"status,omitempty"`
	ScheduledDate   string  `json:"scheduled_date,omitempty"`
	CompletedDate   string  `json:"completed_date,omitempty"`
	Technician      string  `json:"technician,omitempty"`
	Cost            float64 `json:"cost,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}

// Pagination describes a record page.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

// MaintenancePage bundles a record page with its pagination.
type MaintenancePage struct {
	Records    []MaintenanceRecord `json:"records"`
	Pagination Pagination          `json:"pagination"`
}

// MaintenanceFilter narrows a record listing.
type MaintenanceFilter struct {
	DeviceType      string
	Status          string
	MaintenanceType string
	Keyword         string
	Page            int
	PerPage         int
}

// CostStatistics aggregates maintenance spend.
type CostStatistics struct {
	TotalCost float64 `json:"total_cost"`
	AvgCost   float64 `json:"avg_cost"`
	MaxCost   float64 `json:"max_cost"`
	MinCost   float64 `json:"min_cost"`
}

// MaintenanceStatistics is the /api/maintenance/statistics payload.
type MaintenanceStatistics struct {
	Total             int             `json:"total"`
	ByStatus          map[string]int  `json:"by_status"`
	ByDeviceType      map[string]int  `json:"by_device_type"`
	ByMaintenanceType map[string]int  `json:"by_maintenance_type"`
	CostStatistics    CostStatistics  `json:"cost_statistics"`
	OverdueCount      int             `json:"overdue_count"`
	UpcomingCount     int             `json:"upcoming_count"`
}

// ControlResult reports a pause/resume outcome.
type ControlResult struct {
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}
