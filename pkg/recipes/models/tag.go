package models

// TagNameMaxLength bounds Tag.Name.
const TagNameMaxLength = 150

// Tag is a free-text label owned by a single user
type Tag struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Name   string `gorm:"size:150;not null" json:"name"`
	UserID uint   `gorm:"not null;index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
