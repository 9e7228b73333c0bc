package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const vaccinationHeader = "location,iso_code,date,total_vaccinations,people_vaccinated,people_fully_vaccinated,daily_vaccinations\n"

// vaccinationCSV builds a file where every location has one row per day,
// 2021-01-01 onwards, with total_vaccinations = 100*(day+1).
func vaccinationCSV(locations []string, days int) string {
	var b strings.Builder
	b.WriteString(vaccinationHeader)
	for _, loc := range locations {
		for d := 0; d < days; d++ {
			fmt.Fprintf(&b, "%s,ISO,2021-01-%02d,%d,%d,%d,%d\n", loc, d+1, 100*(d+1), 80*(d+1), 50*(d+1), 100)
		}
	}
	return b.String()
}

const censusCSV = `39, State-gov, 77516, Bachelors, 13, Never-married, Adm-clerical, Not-in-family, White, Male, 2174, 0, 40, United-States, <=50K
50, Self-emp-not-inc, 83311, Bachelors, 13, Married-civ-spouse, Exec-managerial, Husband, White, Male, 0, 0, 13, United-States, <=50K
38, Private, 215646, HS-grad, 9, Divorced, Handlers-cleaners, Not-in-family, White, Male, 0, 0, 40, United-States, <=50K
52, Self-emp-inc, 287927, HS-grad, 9, Married-civ-spouse, Exec-managerial, Wife, White, Female, 15024, 0, 40, United-States, >50K
31, Private, 45781, Masters, 14, Never-married, Prof-specialty, Not-in-family, White, Female, 14084, 0, 50, United-States, >50K
54, ?, 180211, Some-college, 10, Married-civ-spouse, ?, Husband, Asian-Pac-Islander, Male, 0, 0, 60, South, >50K
23, Local-gov, 190709, 11th, 7, Never-married, Protective-serv, Not-in-family, Amer-Indian-Eskimo, Male, 0, 0, 52, United-States, <=50K
45, Federal-gov, 100000, 7th-8th, 4, Married-civ-spouse, Craft-repair, Husband, Black, Male, 0, 0, 45, ?, <=50K

`

func loadVaccinations(t *testing.T, locations []string, days int) *Table {
	t.Helper()
	tbl, err := LoadTimeseries(context.Background(), strings.NewReader(vaccinationCSV(locations, days)))
	require.NoError(t, err)
	return tbl
}

func loadCensus(t *testing.T) *Table {
	t.Helper()
	buckets, err := DefaultBuckets()
	require.NoError(t, err)
	tbl, err := LoadDemographics(context.Background(), strings.NewReader(censusCSV), buckets)
	require.NoError(t, err)
	return tbl
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func columnStrings(t *Table, name string) []string {
	c := t.Column(name)
	out := make([]string, t.Len())
	for i := range out {
		out[i] = formatCell(c, i)
	}
	return out
}
