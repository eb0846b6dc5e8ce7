package model

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// swagger:model User
type User struct {
	UUIDBase
	EmployeeID   string      `gorm:"size:50;uniqueIndex;not null" json:"employeeId"`
	Name         string      `gorm:"size:100;not null" json:"name"`
	Password     string      `gorm:"size:100;not null" json:"-"`
	DepartmentID string      `gorm:"index;type:varchar(36)" json:"departmentId"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Role         UserRole    `gorm:"type:enum('ADMIN','USER');default:'USER'" json:"role"`
	IsActive     bool        `gorm:"default:true" json:"isActive"`
}

func (User) TableName() string {
	return "users"
}
