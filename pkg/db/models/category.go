package models

import "time"

// Category groups products for browsing; slug is the public identifier.
type Category struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;size:100;not null" json:"name"`
	Slug        string    `gorm:"column:slug;size:100;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"column:description" json:"description"`
	Icon        string    `gorm:"column:icon;size:50" json:"icon"`
	Color       string    `gorm:"column:color;size:20" json:"color"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
