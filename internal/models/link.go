package models

type Link struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Category string `gorm:"size:50;not null" json:"category"`
	URL      string `gorm:"size:255;uniqueIndex;not null" json:"url"`
}
