package model

// Crate is a package known to the ownership graph. A row is created the
// first time ownership information is recorded for a name.
type Crate struct {
	ID   int    `gorm:"column:id;primaryKey" json:"id"`
	Name string `gorm:"column:name" json:"name"`
}

func (Crate) TableName() string {
	return "crates"
}

// Owner is an ownership edge granting a user management rights over a
// crate. Many-to-many, no payload.
type Owner struct {
	CrateID int `gorm:"column:cid" json:"cid"`
	UserID  int `gorm:"column:uid" json:"uid"`
}

func (Owner) TableName() string {
	return "owners"
}
