package model

// User represents a registry account. PasswordHash is always a
// self-describing argon2id hash string, never raw password material.
type User struct {
	ID           int    `gorm:"column:id;primaryKey" json:"id"`
	Name         string `gorm:"column:name;unique" json:"name"`
	PasswordHash string `gorm:"column:password_hash" json:"-"`
	Role         Role   `gorm:"column:role" json:"role"`
}

func (User) TableName() string {
	return "users"
}
