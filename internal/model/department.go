package model

// Department 部门，参与率统计的基本单位
// swagger:model Department
type Department struct {
	UUIDBase
	Code  string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name  string `gorm:"size:100;not null" json:"name"`
	Order int    `gorm:"default:0" json:"order"`
}

func (Department) TableName() string {
	return "departments"
}
