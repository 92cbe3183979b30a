package models

// Setting is the key-value site configuration table.
type Setting struct {
	Key       string `gorm:"primarykey" json:"key"`  // config key
	ValueJSON JSON   `gorm:"type:json" json:"value"` // config value
}

// TableName sets the table name.
func (Setting) TableName() string {
	return "settings"
}
