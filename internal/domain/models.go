package domain

import (
	"strings"
	"time"

	"github.com/go-openapi/inflect"
)

// ID - идентификатор, назначенный хранилищем
type ID string

// Kind - тип сущности иерархии
type Kind string

const (
	KindCompany    Kind = "Company"
	KindBranch     Kind = "Branch"
	KindDepartment Kind = "Department"
	KindEmployee   Kind = "Employee"
)

// Valid сообщает, является ли тип одним из четырёх уровней иерархии
func (k Kind) Valid() bool {
	switch k {
	case KindCompany, KindBranch, KindDepartment, KindEmployee:
		return true
	}
	return false
}

// Collection возвращает имя таблицы/коллекции: Company -> companies
func (k Kind) Collection() string {
	return inflect.Pluralize(inflect.Underscore(string(k)))
}

// EdgeKind - тип связи вида "<Parent>_<Child>", например Company_Branch
type EdgeKind string

// NewEdgeKind собирает тип связи из типов родителя и потомка
func NewEdgeKind(parent, child Kind) EdgeKind {
	return EdgeKind(string(parent) + "_" + string(child))
}

// Collection возвращает имя коллекции связей: Company_Branch -> companies_branches
func (e EdgeKind) Collection() string {
	parts := strings.SplitN(string(e), "_", 2)
	for i, p := range parts {
		parts[i] = Kind(p).Collection()
	}
	return strings.Join(parts, "_")
}

// Mode - способ кодирования связей родитель-потомок
type Mode string

const (
	// ModeReference - потомок хранит идентификатор родителя
	ModeReference Mode = "reference"
	// ModeEdge - связь хранится отдельной записью
	ModeEdge Mode = "edge"
)

// Entity - сгенерированная запись любого уровня иерархии
type Entity interface {
	Kind() Kind
	SetID(id ID)
	// SetParentID заполняет внешний ключ; у компании ничего не делает
	SetParentID(id ID)
	// Parent возвращает внешний ключ или пустую строку
	Parent() ID
}

// Company представляет компанию, корень иерархии
type Company struct {
	ID          ID        `json:"id" gorm:"primaryKey;type:varchar(36)" msgpack:"id" dynamodbav:"id"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null;index" msgpack:"name" dynamodbav:"name"`
	Industry    string    `json:"industry" gorm:"type:varchar(200);index" msgpack:"industry" dynamodbav:"industry"`
	FoundedYear int       `json:"foundedYear" msgpack:"foundedYear" dynamodbav:"foundedYear"`
	Revenue     float64   `json:"revenue" msgpack:"revenue" dynamodbav:"revenue"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime" msgpack:"createdAt" dynamodbav:"createdAt"`
}

// TableName задаёт имя таблицы для GORM
func (Company) TableName() string {
	return KindCompany.Collection()
}

func (c *Company) Kind() Kind       { return KindCompany }
func (c *Company) SetID(id ID)      { c.ID = id }
func (c *Company) SetParentID(_ ID) {}
func (c *Company) Parent() ID       { return "" }

// Branch представляет филиал компании
type Branch struct {
	ID            ID        `json:"id" gorm:"primaryKey;type:varchar(36)" msgpack:"id" dynamodbav:"id"`
	CompanyID     *ID       `json:"companyId,omitempty" gorm:"type:varchar(36);index" msgpack:"companyId,omitempty" dynamodbav:"companyId,omitempty"`
	Name          string    `json:"name" gorm:"type:varchar(200);not null;index" msgpack:"name" dynamodbav:"name"`
	Location      string    `json:"location" gorm:"type:varchar(200);index" msgpack:"location" dynamodbav:"location"`
	EmployeeCount int       `json:"employeeCount" msgpack:"employeeCount" dynamodbav:"employeeCount"`
	Established   time.Time `json:"established" msgpack:"established" dynamodbav:"established"`
	CreatedAt     time.Time `json:"createdAt" gorm:"autoCreateTime" msgpack:"createdAt" dynamodbav:"createdAt"`
}

// TableName задаёт имя таблицы для GORM
func (Branch) TableName() string {
	return KindBranch.Collection()
}

func (b *Branch) Kind() Kind  { return KindBranch }
func (b *Branch) SetID(id ID) { b.ID = id }
func (b *Branch) SetParentID(id ID) {
	b.CompanyID = &id
}
func (b *Branch) Parent() ID { return deref(b.CompanyID) }

// Department представляет отдел филиала
type Department struct {
	ID        ID        `json:"id" gorm:"primaryKey;type:varchar(36)" msgpack:"id" dynamodbav:"id"`
	BranchID  *ID       `json:"branchId,omitempty" gorm:"type:varchar(36);index" msgpack:"branchId,omitempty" dynamodbav:"branchId,omitempty"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null;index" msgpack:"name" dynamodbav:"name"`
	Budget    float64   `json:"budget" msgpack:"budget" dynamodbav:"budget"`
	HeadCount int       `json:"headCount" msgpack:"headCount" dynamodbav:"headCount"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime" msgpack:"createdAt" dynamodbav:"createdAt"`
}

// TableName задаёт имя таблицы для GORM
func (Department) TableName() string {
	return KindDepartment.Collection()
}

func (d *Department) Kind() Kind  { return KindDepartment }
func (d *Department) SetID(id ID) { d.ID = id }
func (d *Department) SetParentID(id ID) {
	d.BranchID = &id
}
func (d *Department) Parent() ID { return deref(d.BranchID) }

// Employee представляет сотрудника отдела
type Employee struct {
	ID           ID        `json:"id" gorm:"primaryKey;type:varchar(36)" msgpack:"id" dynamodbav:"id"`
	DepartmentID *ID       `json:"departmentId,omitempty" gorm:"type:varchar(36);index" msgpack:"departmentId,omitempty" dynamodbav:"departmentId,omitempty"`
	FirstName    string    `json:"firstName" gorm:"type:varchar(100);not null;index" msgpack:"firstName" dynamodbav:"firstName"`
	LastName     string    `json:"lastName" gorm:"type:varchar(100);not null;index" msgpack:"lastName" dynamodbav:"lastName"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex" msgpack:"email" dynamodbav:"email"`
	Position     string    `json:"position" gorm:"type:varchar(100);index" msgpack:"position" dynamodbav:"position"`
	Salary       float64   `json:"salary" msgpack:"salary" dynamodbav:"salary"`
	JoinDate     time.Time `json:"joinDate" msgpack:"joinDate" dynamodbav:"joinDate"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime" msgpack:"createdAt" dynamodbav:"createdAt"`
}

// TableName задаёт имя таблицы для GORM
func (Employee) TableName() string {
	return KindEmployee.Collection()
}

func (e *Employee) Kind() Kind  { return KindEmployee }
func (e *Employee) SetID(id ID) { e.ID = id }
func (e *Employee) SetParentID(id ID) {
	e.DepartmentID = &id
}
func (e *Employee) Parent() ID { return deref(e.DepartmentID) }

// Edge - отдельная запись связи родитель -> потомок
type Edge struct {
	ID        ID        `json:"id" gorm:"primaryKey;type:varchar(36)" msgpack:"id" dynamodbav:"id"`
	Kind      EdgeKind  `json:"kind" gorm:"type:varchar(64);not null;index" msgpack:"kind" dynamodbav:"kind"`
	FromID    ID        `json:"from" gorm:"type:varchar(36);not null;index" msgpack:"from" dynamodbav:"from"`
	ToID      ID        `json:"to" gorm:"type:varchar(36);not null;index" msgpack:"to" dynamodbav:"to"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime" msgpack:"createdAt" dynamodbav:"createdAt"`
}

// TableName задаёт имя таблицы для GORM
func (Edge) TableName() string {
	return "edges"
}

func deref(id *ID) ID {
	if id == nil {
		return ""
	}
	return *id
}
