package model

// TriggerType indicates what started a run.
type TriggerType string

const (
	TriggerManual    TriggerType = "MANUAL"
	TriggerScheduled TriggerType = "SCHEDULED"
	TriggerTelegram  TriggerType = "TELEGRAM"
	TriggerHTTP      TriggerType = "HTTP"
)
