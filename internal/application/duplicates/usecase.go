package duplicates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/customer-dedup/internal/domain"
	"github.com/jhoicas/customer-dedup/internal/domain/dedup"
	"github.com/jhoicas/customer-dedup/internal/domain/entity"
	"github.com/jhoicas/customer-dedup/internal/domain/repository"
	"github.com/jhoicas/customer-dedup/pkg/logger"
	"github.com/jhoicas/customer-dedup/pkg/metrics"
)

// Config parámetros del caso de uso.
type Config struct {
	SearchLimit     int
	PhoneLimit      int
	QueryTimeout    time.Duration // 0 = sin timeout propio
	StrictFinalPass bool
}

// DefaultConfig valores por defecto.
func DefaultConfig() Config {
	return Config{
		SearchLimit:     dedup.SearchLimit,
		PhoneLimit:      dedup.ExactPhoneLimit,
		QueryTimeout:    5 * time.Second,
		StrictFinalPass: true,
	}
}

// Report resultado de una búsqueda. Degraded indica que la recuperación falló y
// Candidates está vacío por esa razón, no porque no haya duplicados.
type Report struct {
	SearchID   string
	Candidates []dedup.ScoredCustomer
	Degraded   bool
}

// DuplicateUseCase detecta posibles clientes duplicados antes de crear uno nuevo.
// No guarda estado entre llamadas; es seguro usarlo desde varias goroutines.
type DuplicateUseCase struct {
	repo repository.CustomerRepository
	log  *logger.Logger
	cfg  Config
}

// NewDuplicateUseCase construye el caso de uso.
func NewDuplicateUseCase(repo repository.CustomerRepository, log *logger.Logger, cfg Config) *DuplicateUseCase {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = dedup.SearchLimit
	}
	if cfg.PhoneLimit <= 0 {
		cfg.PhoneLimit = dedup.ExactPhoneLimit
	}
	return &DuplicateUseCase{repo: repo, log: log.Component("dedup"), cfg: cfg}
}

// FindPotentialDuplicates devuelve los candidatos que superan threshold, ordenados.
// Nunca falla: ante un error de recuperación devuelve vacío (ver DetectDuplicates).
func (uc *DuplicateUseCase) FindPotentialDuplicates(ctx context.Context, in dedup.SearchInput, threshold int) []dedup.ScoredCustomer {
	return uc.DetectDuplicates(ctx, in, threshold).Candidates
}

// FindExactPhoneMatches devuelve todos los candidatos recuperados por teléfono, sin umbral.
func (uc *DuplicateUseCase) FindExactPhoneMatches(ctx context.Context, phone, companyName string) []dedup.ScoredCustomer {
	return uc.DetectExactPhone(ctx, phone, companyName).Candidates
}

// DetectDuplicates igual que FindPotentialDuplicates pero informa si la recuperación falló.
func (uc *DuplicateUseCase) DetectDuplicates(ctx context.Context, in dedup.SearchInput, threshold int) Report {
	rep := Report{SearchID: uuid.NewString(), Candidates: []dedup.ScoredCustomer{}}
	if !in.HasCriteria() {
		skipped(metrics.OperationSearch)
		return rep
	}
	q := dedup.BuildCandidateQuery(in, uc.cfg.SearchLimit)
	if q.Empty() {
		skipped(metrics.OperationSearch)
		return rep
	}

	candidates, err := uc.retrieve(ctx, "search", q)
	if err != nil {
		uc.logFailure(rep.SearchID, "search", in, err)
		rep.Degraded = true
		observe(metrics.OperationSearch, rep)
		return rep
	}

	scored := dedup.ScoreAll(in, candidates)
	rep.Candidates = dedup.FilterAndRank(scored, in, threshold, dedup.FilterOptions{StrictFinalPass: uc.cfg.StrictFinalPass})

	uc.log.Debug().
		Str("search_id", rep.SearchID).
		Int("threshold", threshold).
		Int("adjusted_threshold", dedup.AdjustedThreshold(in, threshold)).
		Int("retrieved", len(candidates)).
		Int("returned", len(rep.Candidates)).
		Msg("búsqueda de duplicados")
	observe(metrics.OperationSearch, rep)
	return rep
}

// DetectExactPhone prueba las estrategias en orden hasta que una devuelva filas.
// Todas las filas recuperadas se devuelven puntuadas y ordenadas, sin filtrar.
func (uc *DuplicateUseCase) DetectExactPhone(ctx context.Context, phone, companyName string) Report {
	rep := Report{SearchID: uuid.NewString(), Candidates: []dedup.ScoredCustomer{}}
	strategies := dedup.ExactPhoneStrategies(phone, uc.cfg.PhoneLimit)
	if len(strategies) == 0 {
		skipped(metrics.OperationExactPhone)
		return rep
	}
	in := dedup.SearchInput{CompanyName: companyName, Telephone: phone}

	var (
		candidates []*entity.Customer
		used       string
	)
	for _, s := range strategies {
		found, err := uc.retrieve(ctx, s.Name, s.Query)
		if err != nil {
			uc.logFailure(rep.SearchID, s.Name, in, err)
			rep.Degraded = true
			observe(metrics.OperationExactPhone, rep)
			return rep
		}
		if len(found) > 0 {
			candidates, used = found, s.Name
			break
		}
	}

	rep.Candidates = dedup.ScoreAll(in, candidates)
	dedup.Rank(rep.Candidates)

	uc.log.Debug().
		Str("search_id", rep.SearchID).
		Str("strategy", used).
		Int("returned", len(rep.Candidates)).
		Msg("búsqueda por teléfono exacto")
	observe(metrics.OperationExactPhone, rep)
	return rep
}

func (uc *DuplicateUseCase) retrieve(ctx context.Context, strategy string, q dedup.CandidateQuery) ([]*entity.Customer, error) {
	if uc.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.QueryTimeout)
		defer cancel()
	}
	start := time.Now()
	list, err := uc.repo.SearchCandidates(ctx, q)
	metrics.RetrievalDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}
	return list, nil
}

func (uc *DuplicateUseCase) logFailure(searchID, strategy string, in dedup.SearchInput, err error) {
	uc.log.Error().
		Err(err).
		Str("search_id", searchID).
		Str("strategy", strategy).
		Bool("has_name", in.HasName()).
		Bool("has_phone", in.HasPhone()).
		Bool("has_afm", in.HasAFM()).
		Msg("recuperación de candidatos fallida; se devuelve lista vacía")
}

// observe registra el resultado de una búsqueda que llegó a consultar la base.
func observe(operation string, rep Report) {
	outcome := metrics.OutcomeFound
	switch {
	case rep.Degraded:
		outcome = metrics.OutcomeDegraded
	case len(rep.Candidates) == 0:
		outcome = metrics.OutcomeEmpty
	}
	metrics.SearchesTotal.WithLabelValues(operation, outcome).Inc()
	if !rep.Degraded {
		metrics.CandidatesReturned.WithLabelValues(operation).Observe(float64(len(rep.Candidates)))
	}
}

// skipped registra una búsqueda sin predicados utilizables (no se consulta la base).
func skipped(operation string) {
	metrics.SearchesTotal.WithLabelValues(operation, metrics.OutcomeSkipped).Inc()
}
