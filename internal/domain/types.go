package domain

import "time"

// Issue states as reported by the tracker.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

type Milestone struct {
	Number int    `json:"number" yaml:"number"`
	Title  string `json:"title" yaml:"title"`
}

// Issue is a tracker record as fetched, before any parsing.
type Issue struct {
	Number      int        `json:"number" yaml:"number"`
	Title       string     `json:"title" yaml:"title"`
	Body        string     `json:"body" yaml:"body"`
	State       string     `json:"state" yaml:"state"`
	Labels      []string   `json:"labels" yaml:"labels"`
	Assignees   []string   `json:"assignees" yaml:"assignees"`
	Milestone   *Milestone `json:"milestone,omitempty" yaml:"milestone,omitempty"`
	PullRequest bool       `json:"-" yaml:"-"`
}

func (i Issue) Closed() bool { return i.State == StateClosed }

type MemberTask struct {
	Name string `json:"name" yaml:"name"`
	Done bool   `json:"done" yaml:"done"`
}

// Member is a configured team member with charge accumulated over the sprint.
type Member struct {
	Name        string       `json:"name" yaml:"name"`
	Login       string       `json:"ghUsername" yaml:"ghUsername"`
	ChargeDone  float64      `json:"chargeDone" yaml:"chargeDone"`
	ChargeTotal float64      `json:"chargeTotal" yaml:"chargeTotal"`
	Tasks       []MemberTask `json:"tasks" yaml:"tasks"`
}

// Story is one issue turned into a sprint backlog entry.
type Story struct {
	ID          int      `json:"id" yaml:"id"`
	Num         string   `json:"num" yaml:"num"`
	Name        string   `json:"name" yaml:"name"`
	Actor       string   `json:"actor" yaml:"actor"`
	Need        string   `json:"need" yaml:"need"`
	Description []string `json:"description" yaml:"description"`
	DoD         []string `json:"dod" yaml:"dod"`
	Charge      float64  `json:"charge" yaml:"charge"`
	Done        bool     `json:"done" yaml:"done"`
	Labels      []string `json:"labels" yaml:"labels"`
	Assignees   string   `json:"assignees" yaml:"assignees"`
}

// Task groups the stories of a project sharing the same first label.
// Stories are references into the run's story arena.
type Task struct {
	Name    string   `json:"name" yaml:"name"`
	Index   int      `json:"index" yaml:"index"`
	Stories []*Story `json:"stories" yaml:"stories"`
	Charge  float64  `json:"charge" yaml:"charge"`
}

type Project struct {
	ID     int64   `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Tasks  []*Task `json:"tasks" yaml:"tasks"`
	Charge float64 `json:"charge" yaml:"charge"`
}

// Card points at an issue through its content URL; ContentURL is empty for notes.
type Card struct {
	ID         int64  `json:"id"`
	ContentURL string `json:"content_url"`
}

type Column struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Cards []Card `json:"cards"`
}

// Board is the kanban structure of one tracker project.
type Board struct {
	ProjectID int64    `json:"id"`
	Name      string   `json:"name"`
	Columns   []Column `json:"columns"`
}

type Doc struct {
	Title    string    `json:"title" yaml:"title" mapstructure:"title"`
	Object   string    `json:"object" yaml:"object" mapstructure:"object"`
	Author   string    `json:"author" yaml:"author" mapstructure:"author"`
	Manager  string    `json:"manager" yaml:"manager" mapstructure:"manager"`
	Email    string    `json:"email" yaml:"email" mapstructure:"email"`
	Keywords string    `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
	Promo    string    `json:"promo" yaml:"promo" mapstructure:"promo"`
	Ver      []Version `json:"ver" yaml:"ver" mapstructure:"versions"`
}

// Version is one row of the document revision table.
type Version struct {
	Date     string `json:"date" yaml:"date" mapstructure:"date"`
	Version  string `json:"version" yaml:"version" mapstructure:"version"`
	Author   string `json:"author" yaml:"author" mapstructure:"author"`
	Sections string `json:"sections" yaml:"sections" mapstructure:"sections"`
	Comment  string `json:"comment" yaml:"comment" mapstructure:"comment"`
}

type ProgressReport struct {
	Summary        string    `json:"summary" yaml:"summary"`
	BlockingPoints string    `json:"blockingPoints" yaml:"blockingPoints"`
	Conclusion     string    `json:"conclusion" yaml:"conclusion"`
	Members        []*Member `json:"members" yaml:"members"`
}

// SkippedIssue records an issue dropped from the story set and why.
type SkippedIssue struct {
	Number int    `json:"number" yaml:"number"`
	Title  string `json:"title" yaml:"title"`
	Reason string `json:"reason" yaml:"reason"`
}

// Report is the document model handed to the template engine.
type Report struct {
	Doc            Doc            `json:"doc" yaml:"doc"`
	ProgressReport ProgressReport `json:"progressReport" yaml:"progressReport"`
	Stories        []*Story       `json:"stories" yaml:"stories"`
	Projects       []*Project     `json:"projects" yaml:"projects"`
	SprintCharge   float64        `json:"sprintCharge" yaml:"sprintCharge"`
	IgnoredIssues  []Issue        `json:"ignoredIssues" yaml:"ignoredIssues"`
	Skipped        []SkippedIssue `json:"skipped" yaml:"skipped"`
	Period         string         `json:"period" yaml:"period"`
	GeneratedAt    time.Time      `json:"generatedAt" yaml:"generatedAt"`
}

// Run is one stored report generation.
type Run struct {
	ID         int64      `json:"id"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	OK         bool       `json:"ok"`
	Error      string     `json:"error,omitempty"`
	Stories    int        `json:"stories"`
	Skipped    int        `json:"skipped"`
	Report     *Report    `json:"report,omitempty"`
}
