package duplicates_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/customer-dedup/internal/application/duplicates"
	"github.com/jhoicas/customer-dedup/internal/domain"
	"github.com/jhoicas/customer-dedup/internal/domain/dedup"
	"github.com/jhoicas/customer-dedup/internal/domain/entity"
	"github.com/jhoicas/customer-dedup/pkg/logger"
	"github.com/jhoicas/customer-dedup/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorio en memoria
// ──────────────────────────────────────────────────────────────────────────────

// fakeRepo devuelve responses[i] en la i-ésima llamada (la última se repite).
type fakeRepo struct {
	mu          sync.Mutex
	responses   [][]*entity.Customer
	err         error
	queries     []dedup.CandidateQuery
	hadDeadline bool
}

func (f *fakeRepo) SearchCandidates(ctx context.Context, q dedup.CandidateQuery) ([]*entity.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, f.hadDeadline = ctx.Deadline()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, nil
	}
	i := min(len(f.queries)-1, len(f.responses)-1)
	return f.responses[i], nil
}

func (f *fakeRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

var (
	aegean  = &entity.Customer{ID: "c1", CompanyName: "ΑΕΡΟΠΟΡΙΑ ΑΙΓΑΙΟΥ Α.Ε.", Telephone: "210 3541000", AFM: "094456789"}
	airport = &entity.Customer{ID: "c2", CompanyName: "ΑΕΡΟΔΡΟΜΙΟ ΘΕΣΣΑΛΟΝΙΚΗΣ", Telephone: "2310 473212"}
	papadop = &entity.Customer{ID: "c3", CompanyName: "ΠΑΠΑΔΟΠΟΥΛΟΣ ΟΕ", Telephone: "6944000000"}
)

func newUseCase(repo *fakeRepo) *duplicates.DuplicateUseCase {
	return duplicates.NewDuplicateUseCase(repo, logger.NewNop(), duplicates.DefaultConfig())
}

func ids(list []dedup.ScoredCustomer) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// FindPotentialDuplicates
// ──────────────────────────────────────────────────────────────────────────────

func TestFindPotentialDuplicates_SinCriterios_NoConsulta(t *testing.T) {
	repo := &fakeRepo{responses: [][]*entity.Customer{{aegean}}}
	uc := newUseCase(repo)

	out := uc.FindPotentialDuplicates(context.Background(), dedup.SearchInput{}, dedup.DefaultThreshold)

	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Equal(t, 0, repo.calls())
}

func TestFindPotentialDuplicates_TelefonoCortoSolo_NoConsulta(t *testing.T) {
	repo := &fakeRepo{responses: [][]*entity.Customer{{aegean}}}
	uc := newUseCase(repo)

	out := uc.FindPotentialDuplicates(context.Background(), dedup.SearchInput{Telephone: "210"}, dedup.DefaultThreshold)

	assert.Empty(t, out)
	assert.Equal(t, 0, repo.calls())
}

func TestFindPotentialDuplicates_OrdenaYFiltra(t *testing.T) {
	repo := &fakeRepo{responses: [][]*entity.Customer{{papadop, airport, aegean}}}
	uc := newUseCase(repo)

	in := dedup.SearchInput{CompanyName: "Αεροπορία Αιγαίου Α.Ε.", Telephone: "2103541000"}
	out := uc.FindPotentialDuplicates(context.Background(), in, dedup.DefaultThreshold)

	require.Len(t, out, 1)
	assert.Equal(t, "c1", out[0].ID)
	assert.Equal(t, 99, out[0].SimilarityScore)
	assert.Equal(t, dedup.MatchCombined, out[0].MatchType)
	assert.True(t, out[0].MatchReasons.CompanyName)
	assert.True(t, out[0].MatchReasons.Telephone)

	require.Equal(t, 1, repo.calls())
	assert.Equal(t, dedup.SearchLimit, repo.queries[0].Limit)
	assert.True(t, repo.hadDeadline, "la consulta debe llevar timeout")
}

func TestFindPotentialDuplicates_UmbralMonotono(t *testing.T) {
	repo := &fakeRepo{responses: [][]*entity.Customer{{papadop, airport, aegean}}}
	uc := newUseCase(repo)
	in := dedup.SearchInput{CompanyName: "ΑΕΡΟ", Telephone: "2103541000"}

	prev := -1
	for th := 100; th >= 0; th -= 5 {
		n := len(uc.FindPotentialDuplicates(context.Background(), in, th))
		assert.GreaterOrEqual(t, n, prev, "umbral %d", th)
		prev = n
	}
}

func TestFindPotentialDuplicates_ErrorDeRecuperacion(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Out: &buf})
	repo := &fakeRepo{err: errors.New("connection refused")}
	uc := duplicates.NewDuplicateUseCase(repo, log, duplicates.DefaultConfig())

	in := dedup.SearchInput{CompanyName: "ΑΕΡΟΠΟΡΙΑ"}
	out := uc.FindPotentialDuplicates(context.Background(), in, dedup.DefaultThreshold)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	rep := uc.DetectDuplicates(context.Background(), in, dedup.DefaultThreshold)
	assert.True(t, rep.Degraded)
	assert.NotEmpty(t, rep.SearchID)
	assert.Contains(t, buf.String(), "connection refused")
	assert.Contains(t, buf.String(), domain.ErrRetrieval.Error())
	assert.Contains(t, buf.String(), rep.SearchID)
}

func TestDetectDuplicates_SinResultadosNoEsDegradado(t *testing.T) {
	uc := newUseCase(&fakeRepo{})

	rep := uc.DetectDuplicates(context.Background(), dedup.SearchInput{AFM: "094456789"}, dedup.DefaultThreshold)

	assert.False(t, rep.Degraded)
	assert.Empty(t, rep.Candidates)
}

func TestNewDuplicateUseCase_SinTimeout(t *testing.T) {
	repo := &fakeRepo{}
	uc := duplicates.NewDuplicateUseCase(repo, nil, duplicates.Config{})

	uc.FindPotentialDuplicates(context.Background(), dedup.SearchInput{AFM: "094456789"}, 65)

	require.Equal(t, 1, repo.calls())
	assert.False(t, repo.hadDeadline)
	assert.Equal(t, dedup.SearchLimit, repo.queries[0].Limit)
}

// ──────────────────────────────────────────────────────────────────────────────
// FindExactPhoneMatches
// ──────────────────────────────────────────────────────────────────────────────

func TestFindExactPhoneMatches_DevuelveTodoSinUmbral(t *testing.T) {
	retrieved := []*entity.Customer{papadop, airport, aegean}
	repo := &fakeRepo{responses: [][]*entity.Customer{retrieved}}
	uc := newUseCase(repo)

	out := uc.FindExactPhoneMatches(context.Background(), "2103541000", "")

	require.Len(t, out, len(retrieved))
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids(out))
	assert.Equal(t, 90, out[0].SimilarityScore)
	assert.Equal(t, dedup.MatchPhoneOnly, out[0].MatchType)
	assert.Equal(t, 30, out[1].SimilarityScore)
	assert.Equal(t, dedup.MatchPhoneFloor, out[1].MatchType)
	assert.Equal(t, 0, out[2].SimilarityScore)

	require.Equal(t, 1, repo.calls())
	assert.Equal(t, dedup.ExactPhoneLimit, repo.queries[0].Limit)
}

func TestFindExactPhoneMatches_TelefonoCorto(t *testing.T) {
	repo := &fakeRepo{responses: [][]*entity.Customer{{aegean}}}
	uc := newUseCase(repo)

	out := uc.FindExactPhoneMatches(context.Background(), "21-03", "")

	assert.Empty(t, out)
	assert.Equal(t, 0, repo.calls())
}

func TestFindExactPhoneMatches_UsaEstrategiasDeRespaldo(t *testing.T) {
	repo := &fakeRepo{responses: [][]*entity.Customer{nil, nil, {aegean}}}
	uc := newUseCase(repo)

	out := uc.FindExactPhoneMatches(context.Background(), "2103-54.10.00", "Αεροπορία Αιγαίου Α.Ε.")

	require.Len(t, out, 1)
	assert.Equal(t, "c1", out[0].ID)
	require.Equal(t, 3, repo.calls())
	assert.Equal(t, []string{"2103%"}, repo.queries[1].PhonePatterns)
	assert.Equal(t, []string{"%21035%"}, repo.queries[2].PhonePatterns)
}

func TestFindExactPhoneMatches_SinResultados(t *testing.T) {
	repo := &fakeRepo{}
	uc := newUseCase(repo)

	rep := uc.DetectExactPhone(context.Background(), "6944123456", "")

	assert.Empty(t, rep.Candidates)
	assert.False(t, rep.Degraded)
	assert.Equal(t, 2, repo.calls())
}

func TestFindExactPhoneMatches_ErrorDeRecuperacion(t *testing.T) {
	repo := &fakeRepo{err: context.DeadlineExceeded}
	uc := duplicates.NewDuplicateUseCase(repo, nil, duplicates.Config{QueryTimeout: time.Millisecond})

	rep := uc.DetectExactPhone(context.Background(), "6944123456", "")

	assert.True(t, rep.Degraded)
	assert.Empty(t, rep.Candidates)
	assert.Equal(t, 1, repo.calls(), "no se prueban más estrategias tras un error")
}

// ──────────────────────────────────────────────────────────────────────────────
// Métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestMetricas_DistingueDegradadoDeVacio(t *testing.T) {
	counter := func(op, outcome string) float64 {
		return testutil.ToFloat64(metrics.SearchesTotal.WithLabelValues(op, outcome))
	}
	in := dedup.SearchInput{CompanyName: "ΑΕΡΟΠΟΡΙΑ"}

	degraded := counter(metrics.OperationSearch, metrics.OutcomeDegraded)
	newUseCase(&fakeRepo{err: errors.New("boom")}).DetectDuplicates(context.Background(), in, 65)
	assert.Equal(t, degraded+1, counter(metrics.OperationSearch, metrics.OutcomeDegraded))

	empty := counter(metrics.OperationSearch, metrics.OutcomeEmpty)
	newUseCase(&fakeRepo{}).DetectDuplicates(context.Background(), in, 65)
	assert.Equal(t, empty+1, counter(metrics.OperationSearch, metrics.OutcomeEmpty))

	skipped := counter(metrics.OperationExactPhone, metrics.OutcomeSkipped)
	newUseCase(&fakeRepo{}).DetectExactPhone(context.Background(), "69", "")
	assert.Equal(t, skipped+1, counter(metrics.OperationExactPhone, metrics.OutcomeSkipped))

	found := counter(metrics.OperationExactPhone, metrics.OutcomeFound)
	newUseCase(&fakeRepo{responses: [][]*entity.Customer{{aegean}}}).DetectExactPhone(context.Background(), "2103541000", "")
	assert.Equal(t, found+1, counter(metrics.OperationExactPhone, metrics.OutcomeFound))
}
