package engine

import (
	"time"

	"github.com/guileen/gridsource/types"
)

func country(name, status string) types.Record {
	return types.NewRecord(map[string]types.Value{
		"countryName":            types.Text(name),
		"isActiveConvertedValue": types.Text(status),
	})
}

// countries is the five-record store used throughout the engine tests
func countries() []types.Record {
	return []types.Record{
		country("India", "Active"),
		country("Indonesia", "Inactive"),
		country("Iceland", "Active"),
		country("France", "Active"),
		country("Germany", "Inactive"),
	}
}

func names(records []types.Record) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		v, _ := rec.Get("countryName")
		out[i] = v.String()
	}
	return out
}

func at(s string) types.Value {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return types.Time(t, s)
}

func mustPlan(req types.BlockRequest) *Plan {
	plan, err := NewPlan(req)
	if err != nil {
		panic(err)
	}
	return plan
}
