package tui

import (
	"context"
	"time"

	"github.com/kweiss/vaultmon/internal/api"
)

// Backend is the slice of the REST client the console consumes. *api.Client
// satisfies it; tests substitute fakes through WithBackend.
type Backend interface {
	Health(ctx context.Context) (api.Health, error)
	SystemInfo(ctx context.Context) (api.SystemInfo, error)
	SystemPerformance(ctx context.Context) (api.SystemPerformance, error)
	LatestEnvironment(ctx context.Context) ([]api.EnvironmentReading, error)
	EnvironmentThresholds(ctx context.Context) (api.EnvironmentThresholds, error)
	CollectionConfig(ctx context.Context) (api.CollectionConfig, error)
	SaveCollectionConfig(ctx context.Context, update api.CollectionConfigUpdate) (api.CollectionConfig, error)
	ResetCollectionConfig(ctx context.Context, updatedBy string) (api.CollectionConfig, error)
	ControlCollection(ctx context.Context, action, updatedBy string) (api.ControlResult, error)
	ConfigHistory(ctx context.Context, limit int) ([]api.CollectionConfig, error)
	CollectionStatus(ctx context.Context) (api.CollectionStatus, error)
	MaintenanceRecords(ctx context.Context, filter api.MaintenanceFilter) (api.MaintenancePage, error)
	CreateMaintenanceRecord(ctx context.Context, record api.MaintenanceRecord) (api.MaintenanceRecord, error)
	UpdateMaintenanceStatus(ctx context.Context, id int, status, notes string) (api.MaintenanceRecord, error)
	DeleteMaintenanceRecord(ctx context.Context, id int) error
	MaintenanceStatistics(ctx context.Context) (api.MaintenanceStatistics, error)
	OverdueMaintenance(ctx context.Context) ([]api.MaintenanceRecord, error)
	UpcomingMaintenance(ctx context.Context, days int) ([]api.MaintenanceRecord, error)
}

var _ Backend = (*api.Client)(nil)

// StatusFeed is the live collection-status subscription. The real
// implementation is api.StreamClient; a nil feed disables streaming and the
// console stays on polling.
type StatusFeed interface {
	Start()
	Stop()
	Connected() bool
	Latest() (api.CollectionStatus, bool)
}

var _ StatusFeed = (*api.StreamClient)(nil)

// fetchOr applies the console's uniform read policy: try the backend, and on
// any failure substitute the synthetic payload. The returned error is for
// the logbook only; read failures never interrupt the operator.
func fetchOr[T any](timeout time.Duration, fetch func(context.Context) (T, error), synth func() T) (value T, synthetic bool, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	value, err = fetch(ctx)
	if err != nil {
		return synth(), true, err
	}
	return value, false, nil
}
