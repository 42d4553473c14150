package model

// APIKey is a bearer credential owned by a user. KeyHash is an argon2id
// hash of the encoded secret; the plaintext secret is shown to the
// caller once at generation time and never stored.
type APIKey struct {
	ID      int    `gorm:"column:id;primaryKey" json:"id"`
	Name    string `gorm:"column:name;unique" json:"name"`
	UserID  int    `gorm:"column:uid" json:"uid"`
	KeyHash string `gorm:"column:key" json:"-"`
}

func (APIKey) TableName() string {
	return "api_keys"
}
