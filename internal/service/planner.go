package service

import (
	"sort"

	"github.com/jask/projectmatch/internal/matcher"
)

// Proposal is a project value the planner wants to write to one record.
type Proposal struct {
	Record     LogRecord
	OldProject string
	NewProject string
	Tier       matcher.Tier
}

// Plan is the read-only output of a planning pass.
type Plan struct {
	Proposals []Proposal
	// Scanned counts every record looked at.
	Scanned int
	// Attributed counts records skipped because they already had a project.
	Attributed int
	// NoComment counts unattributed records with nothing to match on.
	NoComment int
	// Unmatched counts candidates for which no project was found.
	Unmatched int
	// Declined counts candidates mapped to "leave blank".
	Declined int
}

// ProjectCount is one row of the per-project summary.
type ProjectCount struct {
	Project string
	Count   int
}

// ByProject groups proposals by new project, highest count first. Equal
// counts keep the order in which projects first appear in the plan.
func (p Plan) ByProject() []ProjectCount {
	idx := make(map[string]int)
	var out []ProjectCount
	for _, prop := range p.Proposals {
		i, ok := idx[prop.NewProject]
		if !ok {
			i = len(out)
			idx[prop.NewProject] = i
			out = append(out, ProjectCount{Project: prop.NewProject})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Count > out[b].Count })
	return out
}

// Planner proposes projects for unattributed log records.
type Planner struct {
	Matcher  *matcher.Matcher
	Mappings Mappings
}

// NewPlanner snapshots the catalog and validates threshold. mappings may be nil.
func NewPlanner(projects []string, threshold float64, mappings Mappings) (*Planner, error) {
	m, err := matcher.New(matcher.NewCatalog(projects), threshold)
	if err != nil {
		return nil, err
	}
	return &Planner{Matcher: m, Mappings: mappings}, nil
}

// Plan walks records in order. Records that already have a project are never
// proposed for change.
func (p *Planner) Plan(records []LogRecord) Plan {
	plan := Plan{Scanned: len(records)}
	for _, rec := range records {
		if rec.Attributed() {
			plan.Attributed++
			continue
		}
		if !rec.HasComment() {
			plan.NoComment++
			continue
		}
		res, declined := p.resolve(rec)
		if declined {
			plan.Declined++
			continue
		}
		if !res.Matched() {
			plan.Unmatched++
			continue
		}
		plan.Proposals = append(plan.Proposals, Proposal{
			Record:     rec,
			OldProject: rec.Project,
			NewProject: res.Project,
			Tier:       res.Tier,
		})
	}
	return plan
}

func (p *Planner) resolve(rec LogRecord) (matcher.Result, bool) {
	if p.Mappings != nil {
		if project, ok := p.Mappings.Lookup(rec.Comment, rec.Category); ok {
			if project == "" {
				return matcher.NoMatch, true
			}
			return matcher.Result{Project: project, Tier: matcher.TierMapped}, false
		}
	}
	if p.Matcher == nil {
		return matcher.NoMatch, false
	}
	return p.Matcher.Find(rec.Comment), false
}
