package generator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/org-structure-seeder/internal/domain"
)

// Диапазоны случайных полей
const (
	minFoundedYear = 1900
	maxFoundedYear = 2023
	minRevenue     = 1_000_000
	maxRevenue     = 1_000_000_000
	minBranchStaff = 50
	maxBranchStaff = 1000
	branchYears    = 20
	minBudget      = 100_000
	maxBudget      = 5_000_000
	minHeadCount   = 10
	maxHeadCount   = 200
	minSalary      = 30_000
	maxSalary      = 200_000
	joinYears      = 5
	emailTokenLen  = 6
	emailDomain    = "company.com"
)

// DepartmentNames - фиксированный набор названий отделов, перебирается по кругу
var DepartmentNames = []string{"HR", "Finance", "Engineering", "Marketing", "Sales", "Operations", "IT", "Legal"}

// Positions - должности сотрудников
var Positions = []string{"Manager", "Senior Developer", "Developer", "Analyst", "Associate", "Director", "Coordinator"}

var companyPrefixes = []string{
	"Acme", "Northwind", "Globex", "Initech", "Umbrella", "Stark", "Wayne", "Cyberdyne",
	"Soylent", "Tyrell", "Wonka", "Hooli", "Vandelay", "Massive", "Aperture", "Oscorp",
	"Blue Ridge", "Silver Lake", "Ironwood", "Summit", "Pioneer", "Harbor", "Keystone", "Redwood",
}

var companySuffixes = []string{
	"Inc", "LLC", "Group", "Holdings", "Partners", "Industries", "Systems", "Labs",
	"Solutions", "Technologies", "and Sons", "Corporation", "Ventures", "Logistics",
}

var buzzAdjectives = []string{
	"scalable", "distributed", "customer-centric", "real-time", "cross-platform", "sustainable",
	"end-to-end", "next-generation", "cloud-native", "integrated", "mission-critical", "agile",
}

var buzzNouns = []string{
	"logistics", "supply chains", "analytics", "fintech", "e-commerce", "healthcare",
	"infrastructure", "media", "energy", "manufacturing", "retail", "telecommunications",
}

var cities = []string{
	"Berlin", "Boston", "Denver", "Dublin", "Kyiv", "Lisbon", "London", "Madrid",
	"Milan", "Montreal", "Oslo", "Paris", "Prague", "Seattle", "Sydney", "Tokyo",
	"Toronto", "Vienna", "Warsaw", "Zurich", "Austin", "Chicago", "Helsinki", "Riga",
}

var countries = []string{
	"Germany", "United States", "Ireland", "Ukraine", "Portugal", "United Kingdom", "Spain",
	"Italy", "Canada", "Norway", "France", "Czechia", "Australia", "Japan", "Austria",
	"Poland", "Switzerland", "Finland", "Latvia", "Netherlands", "Sweden", "Brazil",
}

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda",
	"David", "Elizabeth", "William", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Charles", "Karen", "Daniel", "Nancy", "Matthew", "Betty",
	"Anthony", "Margaret", "Mark", "Sandra", "Steven", "Ashley", "Andrew", "Emily",
	"Olga", "Ivan", "Anna", "Dmitry", "Elena", "Sergey", "Maria", "Nikita",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
	"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson",
	"White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker",
	"Ivanov", "Petrenko", "Kowalski", "Novak", "Muller", "Rossi", "Dubois", "Jensen",
}

const alphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"

// EntityFactory синтезирует одну сущность заданного типа без идентификатора
// и без ссылки на родителя.
type EntityFactory interface {
	// Create создаёт сущность. parent используется только для производных
	// уникальных полей (email сотрудника) и не записывается в сущность.
	// ordinal - номер потомка у своего родителя.
	Create(kind domain.Kind, parent domain.ID, ordinal int) (domain.Entity, error)
}

// Faker - EntityFactory на детерминированном генераторе случайных чисел.
// Не безопасен для конкурентного использования: каждая горутина работает со своим Fork.
type Faker struct {
	seed uint64
	rng  *rand.Rand
	now  time.Time
}

// NewFaker создаёт генератор. seed = 0 означает случайное зерно;
// now - точка отсчёта для дат "в прошлом".
func NewFaker(seed uint64, now time.Time) *Faker {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return newFaker(seed, 0, now)
}

func newFaker(seed, stream uint64, now time.Time) *Faker {
	return &Faker{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, stream)),
		now:  now,
	}
}

// Seed возвращает фактически использованное зерно
func (f *Faker) Seed() uint64 {
	return f.seed
}

// Fork возвращает независимый поток с тем же зерном.
// Один и тот же stream всегда даёт одну и ту же последовательность.
func (f *Faker) Fork(stream uint64) *Faker {
	return newFaker(f.seed, stream+1, f.now)
}

func (f *Faker) Create(kind domain.Kind, parent domain.ID, ordinal int) (domain.Entity, error) {
	switch kind {
	case domain.KindCompany:
		return f.company(), nil
	case domain.KindBranch:
		return f.branch(), nil
	case domain.KindDepartment:
		return f.department(ordinal), nil
	case domain.KindEmployee:
		return f.employee(parent), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
}

func (f *Faker) company() *domain.Company {
	return &domain.Company{
		Name:        f.pick(companyPrefixes) + " " + f.pick(companySuffixes),
		Industry:    f.pick(buzzAdjectives) + " " + f.pick(buzzNouns),
		FoundedYear: f.intRange(minFoundedYear, maxFoundedYear),
		Revenue:     f.money(minRevenue, maxRevenue),
	}
}

func (f *Faker) branch() *domain.Branch {
	return &domain.Branch{
		Name:          f.pick(cities) + " Branch",
		Location:      f.pick(countries),
		EmployeeCount: f.intRange(minBranchStaff, maxBranchStaff),
		Established:   f.pastDate(branchYears),
	}
}

func (f *Faker) department(ordinal int) *domain.Department {
	return &domain.Department{
		Name:      DepartmentNames[ordinal%len(DepartmentNames)],
		Budget:    f.money(minBudget, maxBudget),
		HeadCount: f.intRange(minHeadCount, maxHeadCount),
	}
}

func (f *Faker) employee(department domain.ID) *domain.Employee {
	first := f.pick(firstNames)
	last := f.pick(lastNames)
	return &domain.Employee{
		FirstName: first,
		LastName:  last,
		Email:     f.email(first, last, department),
		Position:  f.pick(Positions),
		Salary:    f.money(minSalary, maxSalary),
		JoinDate:  f.pastDate(joinYears),
	}
}

// email: имя + последние 4 символа идентификатора отдела + случайный токен.
// Коллизии не проверяются.
func (f *Faker) email(first, last string, department domain.ID) string {
	fragment := string(department)
	if len(fragment) > 4 {
		fragment = fragment[len(fragment)-4:]
	}
	parts := []string{strings.ToLower(first), strings.ToLower(last)}
	if fragment != "" {
		parts = append(parts, fragment)
	}
	parts = append(parts, f.alnum(emailTokenLen))
	return strings.Join(parts, ".") + "@" + emailDomain
}

func (f *Faker) pick(values []string) string {
	return values[f.rng.IntN(len(values))]
}

// intRange возвращает число из [lo, hi]
func (f *Faker) intRange(lo, hi int) int {
	return lo + f.rng.IntN(hi-lo+1)
}

// money возвращает сумму из [lo, hi] с точностью до копеек
func (f *Faker) money(lo, hi float64) float64 {
	v := lo + f.rng.Float64()*(hi-lo)
	return math.Round(v*100) / 100
}

func (f *Faker) pastDate(years int) time.Time {
	span := f.now.Sub(f.now.AddDate(-years, 0, 0))
	offset := time.Duration(f.rng.Int64N(int64(span)))
	return f.now.Add(-offset).Truncate(time.Second).UTC()
}

func (f *Faker) alnum(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[f.rng.IntN(len(alphanumeric))]
	}
	return string(b)
}
