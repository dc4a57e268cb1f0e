// Package entity holds the persisted domain types.
package entity

// EmployeeTableName is the table backing Employee.
const EmployeeTableName = "employee"

// Employee is a persisted record identified only by its generated key.
// An ID of zero means the record has not been saved yet.
type Employee struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
}

// TableName tells GORM which table Employee maps to.
func (Employee) TableName() string {
	return EmployeeTableName
}

// IsNew reports whether the employee has not been assigned an ID yet.
func (e Employee) IsNew() bool {
	return e.ID == 0
}
