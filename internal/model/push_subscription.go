package model

import "time"

// PushSubscription holds the information for a browser push
// subscription. PartnerID scopes the subscription to one partner's
// reports; an empty PartnerID subscribes to every partner (admin).
type PushSubscription struct {
	Endpoint  string `gorm:"primaryKey"`
	P256DH    string `gorm:"column:p256dh;not null"`
	Auth      string `gorm:"not null"`
	PartnerID string `gorm:"index;size:64"`
	CreatedAt time.Time `gorm:"not null"`
}
