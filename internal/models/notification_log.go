package models

import "time"

const (
	ChannelTeams = "teams"
	ChannelSNS   = "sns"

	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

type NotificationLog struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	FileID     string    `json:"file_id" gorm:"index"`
	FileStatus string    `json:"file_status"`
	Channel    string    `json:"channel"`
	Status     string    `json:"status"`
	MessageID  string    `json:"message_id,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}
