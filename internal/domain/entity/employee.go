package entity

// Roles válidos para Employee.
const (
	RoleAdmin     = "admin"
	RoleCajero    = "cajero"
	RoleOptometra = "optometra"
)

// Employee representa a un empleado; en la factura es quien la elabora.
type Employee struct {
	ID     int64
	Name   string
	Email  string
	Role   string
	Active bool
}
