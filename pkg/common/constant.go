package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvPrefix string = "SAFETRACK"

	LoggerNameCore          string = "safetrack_core"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameGrpcServer    string = "grpc_server"
	LoggerFieldCategory     string = "category"

	LoggerCategoryAlertStore string = "alert_store"
	LoggerCategoryDetector   string = "detector"
	LoggerCategoryDispatcher string = "dispatcher"
	LoggerCategoryPoller     string = "poller"
	LoggerCategoryTelemetry  string = "telemetry"
	LoggerCategorySession    string = "session"
)

// Keys in the shared key-value store.
const (
	StorageKeyActiveAlerts   string = "safetrack_critical_alerts"
	StorageKeyArchivedAlerts string = "safetrack_archived_alerts"
	StorageKeyArchiveDropped string = "safetrack_archive_dropped"
	StorageKeyDeviceData     string = "safetrack_device_data"
	StorageKeyHistoricalData string = "safetrack_historical_data"
	StorageKeyAuth           string = "safetrack_auth"
	StorageKeyTheme          string = "safetrack_theme"
)
