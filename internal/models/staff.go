package models

// Staff is a staff directory entry
type Staff struct {
	StaffCode string `json:"staff_code" yaml:"staff_code"`
	Name      string `json:"name" yaml:"name"`
	Title     string `json:"title" yaml:"title"`
	Email     string `json:"email" yaml:"email"`
}
