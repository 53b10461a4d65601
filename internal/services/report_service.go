package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/votacontrol/attendance-api/internal/constants"
	"github.com/votacontrol/attendance-api/internal/models"
	"github.com/votacontrol/attendance-api/internal/repository"
)

// ReportService assembles the dashboard and report aggregations. It
// only combines predicates and labels grouped counts; the counting
// itself is the database's group-by.
type ReportService struct {
	voterRepo  repository.VoterRepository
	leaderRepo repository.LeaderRepository
}

// NewReportService creates a new ReportService
func NewReportService(voterRepo repository.VoterRepository, leaderRepo repository.LeaderRepository) *ReportService {
	return &ReportService{
		voterRepo:  voterRepo,
		leaderRepo: leaderRepo,
	}
}

// LeaderBucket is one labeled per-leader count.
type LeaderBucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// PorLider is the per-leader distribution including the independents
// bucket.
type PorLider struct {
	Independientes int64          `json:"independientes"`
	Rows           []LeaderBucket `json:"rows"`
}

// FilterDashboard is the aggregate view for a voter filter.
type FilterDashboard struct {
	TotalGeneral  int64 `json:"total_general"`
	TotalFiltered int64 `json:"total_filtered"`
	// Percentage is TotalFiltered over TotalGeneral, rounded.
	Percentage int  `json:"percentage"`
	Truncated  bool `json:"truncated"`

	// TotalColegio is set when a polling place is selected.
	TotalColegio *int64 `json:"total_colegio,omitempty"`
	// PorColegio is set when no polling place is selected (top 15).
	PorColegio []repository.ColegioCount `json:"por_colegio,omitempty"`
	// PorMesa is set when a polling place is selected.
	PorMesa []repository.MesaCount `json:"por_mesa,omitempty"`
	// PorLider is only computable when the leader dimension is not
	// already collapsed by the filter.
	PorLider *PorLider `json:"por_lider,omitempty"`
}

func roundedPercent(part, total int64) int {
	if total <= 0 {
		return 0
	}
	return int((float64(part)/float64(total))*100 + 0.5)
}

// leaderLabels resolves leader ids to display names.
func (s *ReportService) leaderLabels(grouped []repository.LeaderCount) ([]LeaderBucket, error) {
	leaders, err := s.leaderRepo.List(repository.LeaderFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list leaders: %w", err)
	}
	names := make(map[uint64]string, len(leaders))
	for _, l := range leaders {
		names[l.ID] = l.Nombre()
	}

	rows := make([]LeaderBucket, 0, len(grouped))
	for _, g := range grouped {
		if g.Count <= 0 {
			continue
		}
		label, ok := names[g.LeaderID]
		if !ok {
			label = fmt.Sprintf("Líder %d", g.LeaderID)
		}
		rows = append(rows, LeaderBucket{Label: label, Count: g.Count})
	}
	return rows, nil
}

// BuildFilterDashboard computes the aggregate counts for a filter. The
// checked-in and ordering fields of the filter are ignored; only the
// leader, colegio and mesa dimensions apply.
func (s *ReportService) BuildFilterDashboard(filter repository.VoterFilter) (*FilterDashboard, error) {
	base := repository.VoterFilter{
		Leader:  filter.Leader,
		Colegio: filter.Colegio,
		Mesa:    filter.Mesa,
	}

	totalGeneral, err := s.voterRepo.Count(repository.VoterFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to count voters: %w", err)
	}
	totalFiltered, err := s.voterRepo.Count(base)
	if err != nil {
		return nil, fmt.Errorf("failed to count filtered voters: %w", err)
	}

	dashboard := &FilterDashboard{
		TotalGeneral:  totalGeneral,
		TotalFiltered: totalFiltered,
		Percentage:    roundedPercent(totalFiltered, totalGeneral),
		Truncated:     totalFiltered > constants.VoterListingCap,
	}

	if base.Colegio != "" {
		// The mesa dimension is dropped so the per-mesa rows show the
		// whole polling place.
		colegioFilter := repository.VoterFilter{Leader: base.Leader, Colegio: base.Colegio}
		total, err := s.voterRepo.Count(colegioFilter)
		if err != nil {
			return nil, fmt.Errorf("failed to count colegio voters: %w", err)
		}
		dashboard.TotalColegio = &total

		porMesa, err := s.voterRepo.CountByMesa(colegioFilter)
		if err != nil {
			return nil, fmt.Errorf("failed to group by mesa: %w", err)
		}
		dashboard.PorMesa = porMesa
	} else {
		colegioFilter := repository.VoterFilter{Leader: base.Leader, Mesa: base.Mesa}
		porColegio, err := s.voterRepo.CountByColegio(colegioFilter, constants.TopColegios)
		if err != nil {
			return nil, fmt.Errorf("failed to group by colegio: %w", err)
		}
		dashboard.PorColegio = porColegio
	}

	if base.Leader.Kind == repository.LeaderAll {
		placeFilter := repository.VoterFilter{Colegio: base.Colegio, Mesa: base.Mesa}

		independentFilter := placeFilter
		independentFilter.Leader = repository.LeaderSelector{Kind: repository.LeaderNone}
		independientes, err := s.voterRepo.Count(independentFilter)
		if err != nil {
			return nil, fmt.Errorf("failed to count independents: %w", err)
		}

		grouped, err := s.voterRepo.CountByLeader(placeFilter)
		if err != nil {
			return nil, fmt.Errorf("failed to group by leader: %w", err)
		}
		rows, err := s.leaderLabels(grouped)
		if err != nil {
			return nil, err
		}

		dashboard.PorLider = &PorLider{
			Independientes: independientes,
			Rows:           rows,
		}
	}

	return dashboard, nil
}

// Resumen is the top section of the general report.
type Resumen struct {
	Generado                     string `json:"generado"`
	TotalVotantes                int64  `json:"total_votantes"`
	TotalLideres                 int64  `json:"total_lideres"`
	Independientes               int64  `json:"independientes"`
	VotantesPrecargados          int64  `json:"votantes_precargados"`
	VotantesNuevos               int64  `json:"votantes_nuevos"`
	LideresPrecargados           int64  `json:"lideres_precargados"`
	LideresNuevos                int64  `json:"lideres_nuevos"`
	VotantesConfirmados          int64  `json:"votantes_confirmados"`
	LideresConfirmados           int64  `json:"lideres_confirmados"`
	PorcentajeConfirmados        int    `json:"porcentaje_confirmados"`
	PorcentajeLideresConfirmados int    `json:"porcentaje_lideres_confirmados"`
	PorcentajeIndependientes     int    `json:"porcentaje_independientes"`
}

// GeneralReport is the full aggregate report.
type GeneralReport struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Resumen     Resumen                   `json:"resumen"`
	PorLider    []LeaderBucket            `json:"por_lider"`
	PorColegio  []repository.ColegioCount `json:"por_colegio"`
	PorMesa     []repository.MesaCount    `json:"por_mesa"`
}

// BuildGeneralReport computes the unfiltered system-wide report.
func (s *ReportService) BuildGeneralReport(generatedAt time.Time, formatTime func(*time.Time) string) (*GeneralReport, error) {
	checkedIn := true

	totalVotantes, err := s.voterRepo.Count(repository.VoterFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to count voters: %w", err)
	}
	totalLideres, err := s.leaderRepo.Count(repository.LeaderFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to count leaders: %w", err)
	}
	independientes, err := s.voterRepo.Count(repository.VoterFilter{
		Leader: repository.LeaderSelector{Kind: repository.LeaderNone},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count independents: %w", err)
	}
	votantesPrecargados, err := s.voterRepo.Count(repository.VoterFilter{Origen: models.OrigenPrecargado})
	if err != nil {
		return nil, fmt.Errorf("failed to count precargados: %w", err)
	}
	votantesNuevos, err := s.voterRepo.Count(repository.VoterFilter{Origen: models.OrigenNuevo})
	if err != nil {
		return nil, fmt.Errorf("failed to count nuevos: %w", err)
	}
	lideresPrecargados, err := s.leaderRepo.Count(repository.LeaderFilter{Origen: models.OrigenPrecargado})
	if err != nil {
		return nil, fmt.Errorf("failed to count leader precargados: %w", err)
	}
	lideresNuevos, err := s.leaderRepo.Count(repository.LeaderFilter{Origen: models.OrigenNuevo})
	if err != nil {
		return nil, fmt.Errorf("failed to count leader nuevos: %w", err)
	}
	votantesConfirmados, err := s.voterRepo.Count(repository.VoterFilter{CheckedIn: &checkedIn})
	if err != nil {
		return nil, fmt.Errorf("failed to count confirmed voters: %w", err)
	}
	lideresConfirmados, err := s.leaderRepo.Count(repository.LeaderFilter{CheckedIn: &checkedIn})
	if err != nil {
		return nil, fmt.Errorf("failed to count confirmed leaders: %w", err)
	}

	porColegio, err := s.voterRepo.CountByColegio(repository.VoterFilter{}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to group by colegio: %w", err)
	}

	porMesa, err := s.voterRepo.CountByMesa(repository.VoterFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to group by mesa: %w", err)
	}
	sort.Slice(porMesa, func(i, j int) bool {
		if porMesa[i].Colegio != porMesa[j].Colegio {
			return porMesa[i].Colegio < porMesa[j].Colegio
		}
		return porMesa[i].Mesa < porMesa[j].Mesa
	})

	grouped, err := s.voterRepo.CountByLeader(repository.VoterFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to group by leader: %w", err)
	}
	rows, err := s.leaderLabels(grouped)
	if err != nil {
		return nil, err
	}

	porLider := make([]LeaderBucket, 0, len(rows)+1)
	if independientes > 0 {
		porLider = append(porLider, LeaderBucket{Label: "Independientes (sin líder)", Count: independientes})
	}
	porLider = append(porLider, rows...)
	sort.SliceStable(porLider, func(i, j int) bool {
		return porLider[i].Count > porLider[j].Count
	})

	return &GeneralReport{
		GeneratedAt: generatedAt,
		Resumen: Resumen{
			Generado:                     formatTime(&generatedAt),
			TotalVotantes:                totalVotantes,
			TotalLideres:                 totalLideres,
			Independientes:               independientes,
			VotantesPrecargados:          votantesPrecargados,
			VotantesNuevos:               votantesNuevos,
			LideresPrecargados:           lideresPrecargados,
			LideresNuevos:                lideresNuevos,
			VotantesConfirmados:          votantesConfirmados,
			LideresConfirmados:           lideresConfirmados,
			PorcentajeConfirmados:        roundedPercent(votantesConfirmados, totalVotantes),
			PorcentajeLideresConfirmados: roundedPercent(lideresConfirmados, totalLideres),
			PorcentajeIndependientes:     roundedPercent(independientes, totalVotantes),
		},
		PorLider:   porLider,
		PorColegio: porColegio,
		PorMesa:    porMesa,
	}, nil
}
