package config

import "os"

const (
	triggerEnabledEnv        = "TRIGGER_ENABLED"
	triggerMedicationSpecEnv = "TRIGGER_MEDICATION_SPEC"
	triggerDeadlineSpecEnv   = "TRIGGER_DEADLINE_SPEC"

	// Medication reminders match at minute resolution, so the embedded
	// trigger must tick every minute; deadline watches are date-only.
	defaultMedicationSpec = "* * * * *"
	defaultDeadlineSpec   = "0 9 * * *"
)

// TriggerConfig controls the embedded cron trigger for standalone
// deployments. Production setups normally disable it and point an external
// scheduler at the HTTP API instead.
type TriggerConfig struct {
	Enabled        bool
	MedicationSpec string
	DeadlineSpec   string
}

func LoadTriggerConfig() *TriggerConfig {
	return &TriggerConfig{
		Enabled:        os.Getenv(triggerEnabledEnv) == "true",
		MedicationSpec: getEnvOrDefault(triggerMedicationSpecEnv, defaultMedicationSpec),
		DeadlineSpec:   getEnvOrDefault(triggerDeadlineSpecEnv, defaultDeadlineSpec),
	}
}
