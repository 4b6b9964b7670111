package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Chroma-Case/PLDGenerator/internal/domain"
)

// Sentinel validation errors.
var (
	ErrMissingRepository = errors.New("repository owner and name are required")
	ErrMissingMilestone  = errors.New("repository milestone must be positive")
	ErrInvalidSprintDate = errors.New("invalid sprint date")
	ErrSprintRange       = errors.New("sprint end is before sprint start")
	ErrDuplicateMember   = errors.New("duplicate member login")
)

const settingsEnvPrefix = "PLD"

// Accepted sprint date layouts, day first.
var sprintDateLayouts = []string{"2-1-2006", "2/1/2006", "2.1.2006"}

// Settings is the per-sprint report configuration read from the settings file.
type Settings struct {
	Repository     RepositorySettings `mapstructure:"repository"`
	Doc            domain.Doc         `mapstructure:"doc"`
	ProgressReport ProgressSettings   `mapstructure:"progressReport"`
	Members        []MemberSettings   `mapstructure:"members"`
	Sprint         SprintSettings     `mapstructure:"sprint"`
}

type RepositorySettings struct {
	Owner         string   `mapstructure:"owner"`
	Name          string   `mapstructure:"name"`
	Milestone     int      `mapstructure:"milestone"`
	IgnoredLabels []string `mapstructure:"ignoredLabels"`
	// Projects restricts and orders the boards used; empty means every board of the repository.
	Projects []string `mapstructure:"projects"`
}

type ProgressSettings struct {
	Summary        string `mapstructure:"summary"`
	BlockingPoints string `mapstructure:"blockingPoints"`
	Conclusion     string `mapstructure:"conclusion"`
}

type MemberSettings struct {
	Name       string `mapstructure:"name"`
	GHUsername string `mapstructure:"ghUsername"`
}

type SprintSettings struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

// LoadSettings reads the settings file at path. Values can be overridden with
// PLD_* environment variables, e.g. PLD_REPOSITORY_MILESTONE.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	applySettingsDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(settingsEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("settings")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}
	return &s, nil
}

func applySettingsDefaults(v *viper.Viper) {
	v.SetDefault("repository.owner", "")
	v.SetDefault("repository.name", "")
	v.SetDefault("repository.milestone", 0)
	v.SetDefault("repository.ignoredLabels", []string{})
	v.SetDefault("repository.projects", []string{})
	v.SetDefault("progressReport.summary", "")
	v.SetDefault("progressReport.blockingPoints", "")
	v.SetDefault("progressReport.conclusion", "")
	v.SetDefault("sprint.start", "")
	v.SetDefault("sprint.end", "")
}

// Validate checks the settings required to build a report.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.Repository.Owner) == "" || strings.TrimSpace(s.Repository.Name) == "" {
		return ErrMissingRepository
	}
	if s.Repository.Milestone <= 0 {
		return fmt.Errorf("%w: got %d", ErrMissingMilestone, s.Repository.Milestone)
	}
	seen := map[string]struct{}{}
	for _, m := range s.Members {
		if _, dup := seen[m.GHUsername]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateMember, m.GHUsername)
		}
		seen[m.GHUsername] = struct{}{}
	}
	_, _, err := s.SprintDates()
	return err
}

// SprintDates parses the configured sprint start and end dates.
func (s *Settings) SprintDates() (time.Time, time.Time, error) {
	start, err := parseSprintDate(s.Sprint.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("sprint start: %w", err)
	}
	end, err := parseSprintDate(s.Sprint.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("sprint end: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrSprintRange
	}
	return start, end, nil
}

func parseSprintDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range sprintDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSprintDate, raw)
}

// NewMembers creates the member accumulators in configuration order.
func (s *Settings) NewMembers() []*domain.Member {
	out := make([]*domain.Member, 0, len(s.Members))
	for _, m := range s.Members {
		out = append(out, &domain.Member{Name: m.Name, Login: m.GHUsername, Tasks: []domain.MemberTask{}})
	}
	return out
}
