package records

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Record is a stored user entry. Records are values: two records are the
// same record when every field matches.
type Record struct {
	Name string `json:"name" yaml:"name"`
	Age  int    `json:"age" yaml:"age"`
}

// NewRecord builds a Record from its fields. It does not validate.
func NewRecord(name string, age int) Record {
	return Record{Name: name, Age: age}
}

// Equal reports whether r and other hold the same name and age.
func (r Record) Equal(other Record) bool {
	return r.Name == other.Name && r.Age == other.Age
}

func (r Record) String() string {
	var b strings.Builder
	b.WriteString("Record{name=")
	b.WriteString(r.Name)
	b.WriteString(", age=")
	b.WriteString(strconv.Itoa(r.Age))
	b.WriteString("}")
	return b.String()
}

// Compare orders records by name only.
func Compare(a, b Record) int {
	return strings.Compare(a.Name, b.Name)
}

// CompareByNameThenAge is the total order over records: name first, age breaks ties.
func CompareByNameThenAge(a, b Record) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.Age, b.Age)
}

// SortByNameThenAge sorts records in place using CompareByNameThenAge.
func SortByNameThenAge(recs []Record) {
	slices.SortStableFunc(recs, CompareByNameThenAge)
}

func filterByName(recs []Record, name string) []Record {
	out := make([]Record, 0)
	for _, rec := range recs {
		if rec.Name == name {
			out = append(out, rec)
		}
	}
	return out
}
