package audit

import "time"

type Entry struct {
	ID        string    `db:"id" gorm:"primaryKey;type:varchar(64)"`
	TenantID  string    `db:"tenant_id" gorm:"column:tenant_id;type:varchar(64);not null;index"`
	Timestamp string    `db:"timestamp" gorm:"column:timestamp;not null"`
	Action    string    `db:"action" gorm:"column:action;type:varchar(16);not null"`
	Details   string    `db:"details" gorm:"column:details;type:text"`
	Seq       int64     `db:"seq" gorm:"column:seq;not null"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at"`
}

func (Entry) TableName() string {
	return "audit_logs"
}
