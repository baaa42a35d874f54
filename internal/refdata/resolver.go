package refdata

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"autuacao-mobile/internal/model"
)

// Fetcher is the slice of the backend client the resolver needs.
type Fetcher interface {
	Operadoras(ctx context.Context, date string) ([]model.Operadora, error)
	Veiculos(ctx context.Context) ([]model.Veiculo, error)
	Linhas(ctx context.Context, sigla, date string) ([]model.Linha, error)
	Prepostos(ctx context.Context, sigla string) ([]model.Preposto, error)
	Infracoes(ctx context.Context) ([]model.Infracao, error)
	Localidades(ctx context.Context) ([]model.Localidade, error)
}

// Collections are the lookup lists the form selects from. The resolver is
// their only writer; everyone else reads snapshots.
type Collections struct {
	Operadoras  []model.Operadora
	Veiculos    []model.Veiculo
	Infracoes   []model.Infracao
	Localidades []model.Localidade
	Linhas      []model.Linha
	Prepostos   []model.Preposto
}

var (
	ErrEmptyDate  = errors.New("date must not be empty")
	ErrEmptySigla = errors.New("operator sigla must not be empty")
)

// Resolver fetches the lookup collections tier by tier. A failed lookup
// degrades to an empty list plus a notice; it never propagates. Loads
// superseded by a newer call for the same tier are discarded, so the
// collections always reflect the last requested parameters.
type Resolver struct {
	fetcher Fetcher
	log     zerolog.Logger

	mu          sync.Mutex
	collections Collections
	baseGen     uint64
	operatorGen uint64
	// Generation whose load is in flight, zero when idle. The owning load
	// clears its own flag even when its result ends up discarded.
	baseLoadingGen     uint64
	operatorLoadingGen uint64
}

func NewResolver(fetcher Fetcher, log zerolog.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		log:     log.With().Str("component", "refdata").Logger(),
	}
}

// LoadBase fetches the date-scoped and session-constant lists: operators for
// the given date plus vehicles, violation codes and localities. The four
// fetches run concurrently and each fails independently. Operator-scoped
// lists are cleared because a date change invalidates the operator selection.
func (r *Resolver) LoadBase(ctx context.Context, date string) ([]model.Notice, error) {
	if strings.TrimSpace(date) == "" {
		return nil, ErrEmptyDate
	}

	r.mu.Lock()
	r.baseGen++
	gen := r.baseGen
	r.baseLoadingGen = gen
	// Any in-flight operator-scoped load now belongs to a stale operator.
	r.operatorGen++
	r.mu.Unlock()

	var (
		operadoras  []model.Operadora
		veiculos    []model.Veiculo
		infracoes   []model.Infracao
		localidades []model.Localidade
		errs        [4]error
	)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		operadoras, errs[0] = r.fetcher.Operadoras(ctx, date)
	}()
	go func() {
		defer wg.Done()
		veiculos, errs[1] = r.fetcher.Veiculos(ctx)
	}()
	go func() {
		defer wg.Done()
		infracoes, errs[2] = r.fetcher.Infracoes(ctx)
	}()
	go func() {
		defer wg.Done()
		localidades, errs[3] = r.fetcher.Localidades(ctx)
	}()
	wg.Wait()

	notices := r.degrade([]degraded{
		{errs[0], "Não foi possível carregar as operadoras."},
		{errs[1], "Não foi possível carregar os veículos."},
		{errs[2], "Não foi possível carregar as infrações."},
		{errs[3], "Não foi possível carregar as localidades."},
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.baseLoadingGen == gen {
		r.baseLoadingGen = 0
	}
	if gen != r.baseGen {
		// A newer date superseded this load; its results are stale.
		return nil, nil
	}
	r.collections.Operadoras = operadoras
	r.collections.Veiculos = veiculos
	r.collections.Infracoes = infracoes
	r.collections.Localidades = localidades
	r.collections.Linhas = nil
	r.collections.Prepostos = nil
	return notices, nil
}

// LoadOperatorScoped fetches the lists indexed by the operator's service
// sigla. It must only be called once an operator is selected.
func (r *Resolver) LoadOperatorScoped(ctx context.Context, sigla, date string) ([]model.Notice, error) {
	if strings.TrimSpace(sigla) == "" {
		return nil, ErrEmptySigla
	}
	if strings.TrimSpace(date) == "" {
		return nil, ErrEmptyDate
	}

	r.mu.Lock()
	r.operatorGen++
	gen := r.operatorGen
	r.operatorLoadingGen = gen
	r.mu.Unlock()

	var (
		linhas    []model.Linha
		prepostos []model.Preposto
		errs      [2]error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		linhas, errs[0] = r.fetcher.Linhas(ctx, sigla, date)
	}()
	go func() {
		defer wg.Done()
		prepostos, errs[1] = r.fetcher.Prepostos(ctx, sigla)
	}()
	wg.Wait()

	notices := r.degrade([]degraded{
		{errs[0], "Não foi possível carregar as linhas da operadora."},
		{errs[1], "Não foi possível carregar os prepostos da operadora."},
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.operatorLoadingGen == gen {
		r.operatorLoadingGen = 0
	}
	if gen != r.operatorGen {
		return nil, nil
	}
	r.collections.Linhas = linhas
	r.collections.Prepostos = prepostos
	return notices, nil
}

type degraded struct {
	err     error
	message string
}

func (r *Resolver) degrade(items []degraded) []model.Notice {
	var notices []model.Notice
	for _, item := range items {
		if item.err == nil {
			continue
		}
		r.log.Warn().Err(item.err).Msg("lookup degraded to empty list")
		notices = append(notices, model.WarningNotice(item.message))
	}
	return notices
}

func (r *Resolver) Snapshot() Collections {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collections
}

func (r *Resolver) BaseLoading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.baseLoadingGen != 0
}

func (r *Resolver) OperatorLoading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.operatorLoadingGen != 0
}
