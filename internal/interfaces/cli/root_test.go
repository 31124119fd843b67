package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/customer-dedup/internal/application/duplicates"
	"github.com/jhoicas/customer-dedup/internal/domain"
	"github.com/jhoicas/customer-dedup/internal/domain/dedup"
	"github.com/jhoicas/customer-dedup/internal/domain/entity"
	"github.com/jhoicas/customer-dedup/internal/interfaces/cli"
)

type fakeFinder struct {
	report    duplicates.Report
	gotInput  dedup.SearchInput
	gotTh     int
	gotPhone  string
	gotName   string
	searches  int
	phoneRuns int
}

func (f *fakeFinder) DetectDuplicates(_ context.Context, in dedup.SearchInput, threshold int) duplicates.Report {
	f.searches++
	f.gotInput, f.gotTh = in, threshold
	return f.report
}

func (f *fakeFinder) DetectExactPhone(_ context.Context, phone, companyName string) duplicates.Report {
	f.phoneRuns++
	f.gotPhone, f.gotName = phone, companyName
	return f.report
}

func sampleReport() duplicates.Report {
	return duplicates.Report{
		SearchID: "s-1",
		Candidates: []dedup.ScoredCustomer{
			{
				Customer:        entity.Customer{ID: "c1", CompanyName: "ΑΕΡΟΠΟΡΙΑ ΑΙΓΑΙΟΥ Α.Ε.", Telephone: "210 3541000", AFM: "094456789"},
				SimilarityScore: 99,
				MatchType:       dedup.MatchCombined,
				MatchReasons:    dedup.MatchReasons{CompanyName: true, Telephone: true},
			},
			{
				Customer:        entity.Customer{ID: "c2", CompanyName: "ΑΕΡΟΔΡΟΜΙΟ"},
				SimilarityScore: 30,
				MatchType:       dedup.MatchNameFloor,
			},
		},
	}
}

func run(t *testing.T, f *fakeFinder, args ...string) (string, error) {
	t.Helper()
	closed := false
	t.Cleanup(func() {
		if f.searches+f.phoneRuns > 0 {
			assert.True(t, closed, "la sesión debe cerrarse")
		}
	})
	cmd := cli.NewRootCommand(func(context.Context) (*cli.Session, error) {
		return &cli.Session{Finder: f, DefaultThreshold: 70, Close: func() { closed = true }}, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSearch_Tabla(t *testing.T) {
	f := &fakeFinder{report: sampleReport()}

	out, err := run(t, f, "search", "--name", "Αεροπορία", "--phone", "2103541000")
	require.NoError(t, err)

	assert.Equal(t, dedup.SearchInput{CompanyName: "Αεροπορία", Telephone: "2103541000"}, f.gotInput)
	assert.Equal(t, 70, f.gotTh, "sin --threshold usa el umbral configurado")
	assert.Contains(t, out, "SCORE")
	assert.Contains(t, out, "combined")
	assert.Contains(t, out, "name,phone")
	assert.Contains(t, out, "name-floor")
	assert.Contains(t, out, "ΑΕΡΟΠΟΡΙΑ ΑΙΓΑΙΟΥ Α.Ε.")
}

func TestSearch_UmbralExplicito(t *testing.T) {
	f := &fakeFinder{}

	out, err := run(t, f, "search", "--afm", "094456789", "-t", "40")
	require.NoError(t, err)

	assert.Equal(t, 40, f.gotTh)
	assert.Contains(t, out, "Sin candidatos.")
}

func TestSearch_Validaciones(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"sin criterios", []string{"search"}, domain.ErrNoCriteria},
		{"umbral alto", []string{"search", "--name", "x", "--threshold", "101"}, domain.ErrInvalidInput},
		{"umbral negativo", []string{"search", "--name", "x", "--threshold=-5"}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFinder{}
			_, err := run(t, f, tt.args...)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, f.searches)
		})
	}
}

func TestSearch_Degradado_Error(t *testing.T) {
	f := &fakeFinder{report: duplicates.Report{SearchID: "s-9", Degraded: true}}

	_, err := run(t, f, "search", "--name", "ΑΕΡΟ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, cli.ErrDegraded))
	assert.Contains(t, err.Error(), "s-9")
}

func TestPhone_JSON(t *testing.T) {
	f := &fakeFinder{report: sampleReport()}

	out, err := run(t, f, "phone", "2103541000", "--name", "Αιγαίου", "--json")
	require.NoError(t, err)

	assert.Equal(t, "2103541000", f.gotPhone)
	assert.Equal(t, "Αιγαίου", f.gotName)

	var body struct {
		Total      int `json:"total"`
		Candidates []struct {
			ID              string `json:"id"`
			SimilarityScore int    `json:"similarity_score"`
		} `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, "c1", body.Candidates[0].ID)
	assert.Equal(t, 99, body.Candidates[0].SimilarityScore)
}

func TestPhone_RequiereArgumento(t *testing.T) {
	f := &fakeFinder{}
	_, err := run(t, f, "phone")
	assert.Error(t, err)
	assert.Equal(t, 0, f.phoneRuns)
}

func TestOpener_Error(t *testing.T) {
	cmd := cli.NewRootCommand(func(context.Context) (*cli.Session, error) {
		return nil, errors.New("dial tcp: connection refused")
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"phone", "6944000000"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
