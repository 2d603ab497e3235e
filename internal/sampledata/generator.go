package sampledata

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jask/projectmatch/internal/database/repository"
)

// Repos bundles repos used by Seed.
type Repos struct {
	Projects *repository.ProjectRepo
	Log      *repository.LogEntryRepo
}

// Projects is the sample catalog.
var Projects = []string{
	"Alpha Launch",
	"Beta Retrofit",
	"Orion",
	"Data Pipeline",
	"Customer Portal",
	"Internal Tools",
}

var (
	members    = []string{"Sam", "Kim", "Lee", "Ana", "Raj"}
	categories = []string{"Development", "Meetings", "Design", "Support"}
	// comment templates; %s receives a (possibly misspelt) project name
	templates = []string{
		"worked on %s",
		"%s planning call",
		"bug fixes for %s today",
		"reviewed %s PRs",
		"%s",
	}
	filler = []string{"admin", "lunch and learn", "1:1", "inbox zero", "travel"}
)

// Log generates n sample log entries. The same seed always yields the same
// entries. Roughly a third already carry a project and some comments contain
// typos so every match tier gets exercised.
func Log(seed int64, n int) []repository.LogEntry {
	r := rand.New(rand.NewSource(seed))
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	out := make([]repository.LogEntry, 0, n)
	for i := 0; i < n; i++ {
		e := repository.LogEntry{
			Row:        i + 2,
			Date:       start.AddDate(0, 0, i/4).Format(time.DateOnly),
			TeamMember: members[r.Intn(len(members))],
			Category:   categories[r.Intn(len(categories))],
		}
		project := Projects[r.Intn(len(Projects))]
		switch roll := r.Intn(10); {
		case roll < 3:
			e.Project = project
			e.Comment = fmt.Sprintf(templates[r.Intn(len(templates))], strings.ToLower(project))
		case roll < 5:
			e.Comment = fmt.Sprintf(templates[r.Intn(len(templates))], typo(r, project))
		case roll < 8:
			e.Comment = fmt.Sprintf(templates[r.Intn(len(templates))], strings.ToUpper(project))
		case roll < 9:
			e.Comment = filler[r.Intn(len(filler))]
		}
		out = append(out, e)
	}
	return out
}

// typo drops one letter from the longest word of name.
func typo(r *rand.Rand, name string) string {
	words := strings.Fields(name)
	longest := 0
	for i, w := range words {
		if len(w) > len(words[longest]) {
			longest = i
		}
	}
	w := words[longest]
	if len(w) > 4 {
		i := 1 + r.Intn(len(w)-2)
		words[longest] = w[:i] + w[i+1:]
	}
	return strings.Join(words, " ")
}

// Seed stores the sample catalog and n generated log entries.
func Seed(ctx context.Context, repos Repos, seed int64, n int) error {
	for i, name := range Projects {
		if err := repos.Projects.Upsert(ctx, repository.Project{Name: name, SortOrder: i}); err != nil {
			return err
		}
	}
	return repos.Log.Replace(ctx, Log(seed, n))
}
