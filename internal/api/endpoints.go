package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Health probes /api/health. An unhealthy backend answers HTTP 500, which
// surfaces as a KindHTTP error here.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &out)
	return out, err
}

// SystemInfo fetches /api/system/info.
func (c *Client) SystemInfo(ctx context.Context) (SystemInfo, error) {
	var out SystemInfo
	err := c.do(ctx, http.MethodGet, "/api/system/info", nil, &out)
	return out, err
}

// SystemPerformance fetches /api/system/performance.
func (c *Client) SystemPerformance(ctx context.Context) (SystemPerformance, error) {
	var out SystemPerformance
	err := c.doEnveloped(ctx, http.MethodGet, "/api/system/performance", nil, &out)
	return out, err
}

// LatestEnvironment fetches the newest reading per sensor.
func (c *Client) LatestEnvironment(ctx context.Context) ([]EnvironmentReading, error) {
	var out []EnvironmentReading
	err := c.doEnveloped(ctx, http.MethodGet, "/api/environment/latest", nil, &out)
	return out, err
}

// EnvironmentThresholds fetches the configured comfort bands.
func (c *Client) EnvironmentThresholds(ctx context.Context) (EnvironmentThresholds, error) {
	var out EnvironmentThresholds
	err := c.doEnveloped(ctx, http.MethodGet, "/api/environment/thresholds", nil, &out)
	return out, err
}

// CollectionConfig fetches the active collection configuration.
func (c *Client) CollectionConfig(ctx context.Context) (CollectionConfig, error) {
	var out CollectionConfig
	err := c.doEnveloped(ctx, http.MethodGet, "/api/collection/config", nil, &out)
	return out, err
}

// SaveCollectionConfig posts a config update and returns the stored config.
func (c *Client) SaveCollectionConfig(ctx context.Context, update CollectionConfigUpdate) (CollectionConfig, error) {
	var out CollectionConfig
	err := c.doEnveloped(ctx, http.MethodPost, "/api/collection/config", update, &out)
	return out, err
}

// ResetCollectionConfig restores the backend default intervals.
func (c *Client) ResetCollectionConfig(ctx context.Context, updatedBy string) (CollectionConfig, error) {
	var out CollectionConfig
	body := map[string]string{"updatedBy": updatedBy}
	err := c.doEnveloped(ctx, http.MethodPost, "/api/collection/config/reset", body, &out)
	return out, err
}

// ConfigHistory lists recent collection-config changes, newest first.
func (c *Client) ConfigHistory(ctx context.Context, limit int) ([]CollectionConfig, error) {
	var out []CollectionConfig
	path := "/api/collection/config/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	err := c.doEnveloped(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// ControlCollection pauses or resumes collection. The backend reports the
// resulting run state at the top level of the envelope rather than in data.
func (c *Client) ControlCollection(ctx context.Context, action, updatedBy string) (ControlResult, error) {
	if action != "pause" && action != "resume" {
		return ControlResult{}, &Error{Kind: KindDecode, Message: fmt.Sprintf("unsupported action %q", action)}
	}
	body := map[string]string{"action": action, "updatedBy": updatedBy}
	var resp struct {
		Envelope
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/collection/control", body, &resp); err != nil {
		return ControlResult{}, err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = resp.Error
		}
		return ControlResult{}, &Error{Kind: KindEnvelope, Message: msg}
	}
	return ControlResult{Message: resp.Message, Status: resp.Status}, nil
}

// CollectionStatus fetches the realtime scheduler status.
func (c *Client) CollectionStatus(ctx context.Context) (CollectionStatus, error) {
	var out CollectionStatus
	err := c.doEnveloped(ctx, http.MethodGet, "/api/collection/status", nil, &out)
	return out, err
}

// MaintenanceRecords lists maintenance records matching the filter.
func (c *Client) MaintenanceRecords(ctx context.Context, filter MaintenanceFilter) (MaintenancePage, error) {
	var out MaintenancePage
	err := c.doEnveloped(ctx, http.MethodGet, "/api/maintenance/records"+filter.query(), nil, &out)
	return out, err
}

// MaintenanceRecord fetches one record by id.
func (c *Client) MaintenanceRecord(ctx context.Context, id int) (MaintenanceRecord, error) {
	var out MaintenanceRecord
	err := c.doEnveloped(ctx, http.MethodGet, fmt.Sprintf("/api/maintenance/records/%d", id), nil, &out)
	return out, err
}

// CreateMaintenanceRecord creates a record and returns the stored row.
func (c *Client) CreateMaintenanceRecord(ctx context.Context, record MaintenanceRecord) (MaintenanceRecord, error) {
	var out MaintenanceRecord
	err := c.doEnveloped(ctx, http.MethodPost, "/api/maintenance/records", record, &out)
	return out, err
}

// UpdateMaintenanceStatus moves a record to a new status.
func (c *Client) UpdateMaintenanceStatus(ctx context.Context, id int, status, notes string) (MaintenanceRecord, error) {
	var out MaintenanceRecord
	body := map[string]string{"status": status}
	if notes != "" {
		body["notes"] = notes
	}
	path := fmt.Sprintf("/api/maintenance/records/%d/status", id)
	err := c.doEnveloped(ctx, http.MethodPut, path, body, &out)
	return out, err
}

// DeleteMaintenanceRecord removes a record.
func (c *Client) DeleteMaintenanceRecord(ctx context.Context, id int) error {
	return c.doEnveloped(ctx, http.MethodDelete, fmt.Sprintf("/api/maintenance/records/%d", id), nil, nil)
}

// MaintenanceStatistics fetches the aggregate maintenance counters.
func (c *Client) MaintenanceStatistics(ctx context.Context) (MaintenanceStatistics, error) {
	var out MaintenanceStatistics
	err := c.doEnveloped(ctx, http.MethodGet, "/api/maintenance/statistics", nil, &out)
	return out, err
}

// OverdueMaintenance lists records past their scheduled date.
func (c *Client) OverdueMaintenance(ctx context.Context) ([]MaintenanceRecord, error) {
	var out []MaintenanceRecord
	err := c.doEnveloped(ctx, http.MethodGet, "/api/maintenance/overdue", nil, &out)
	return out, err
}

// UpcomingMaintenance lists records due within the next days.
func (c *Client) UpcomingMaintenance(ctx context.Context, days int) ([]MaintenanceRecord, error) {
	var out []MaintenanceRecord
	path := "/api/maintenance/upcoming"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}
	err := c.doEnveloped(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (f MaintenanceFilter) query() string {
	values := url.Values{}
	if f.DeviceType != "" {
		values.Set("device_type", f.DeviceType)
	}
	if f.Status != "" {
		values.Set("status", f.Status)
	}
	if f.MaintenanceType != "" {
		values.Set("maintenance_type", f.MaintenanceType)
	}
	if f.Keyword != "" {
		values.Set("keyword", f.Keyword)
	}
	if f.Page > 0 {
		values.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(f.PerPage))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}
