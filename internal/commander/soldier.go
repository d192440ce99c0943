package commander

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"yc/internal/action"
	"yc/internal/domain"
	"yc/internal/matcher"
)

// DefaultScore is the score of a soldier built without an explicit one.
const DefaultScore = 50

// Soldier is a leaf command that is also its own commander: it yields itself
// when the query matches its keywords or command text. Executing it places
// the command on the shell prompt.
type Soldier struct {
	keywords    []string
	command     string
	description string
	score       int
}

// SoldierSpec describes a soldier; a nil Score means DefaultScore.
type SoldierSpec struct {
	Keywords    []string
	Command     string
	Description string
	Score       *int
}

func NewSoldier(keywords []string, command, description string, score int) *Soldier {
	return &Soldier{
		keywords:    append([]string(nil), keywords...),
		command:     command,
		description: description,
		score:       score,
	}
}

// FromSpec builds a soldier, filling unspecified fields with defaults.
func FromSpec(spec SoldierSpec) *Soldier {
	score := DefaultScore
	if spec.Score != nil {
		score = *spec.Score
	}
	return NewSoldier(spec.Keywords, spec.Command, spec.Description, score)
}

func (s *Soldier) matches(keywords []string) bool {
	return matcher.Match(keywords, s.keywords, s.command)
}

func (s *Soldier) Match(keywords []string) []domain.Command {
	if !s.matches(keywords) {
		return nil
	}
	return []domain.Command{s}
}

func (s *Soldier) Order(ctx context.Context, keywords []string, sink domain.Sink) error {
	return yield(ctx, sink, s, s.matches(keywords))
}

func (s *Soldier) Score() int       { return s.score }
func (s *Soldier) String() string   { return s.command }
func (s *Soldier) CopyText() string { return s.command }
func (s *Soldier) Execute() error   { return action.Inject(s.command) }

func (s *Soldier) Preview() domain.Preview {
	p := domain.Preview{}.Add("command", s.command)
	if s.description != "" {
		p = p.Add("description", s.description)
	}
	if len(s.keywords) > 0 {
		p = p.Add("keywords", strings.Join(s.keywords, " "))
	}
	return p
}

// RunSoldier runs its command directly instead of placing it on the prompt.
type RunSoldier struct {
	Soldier
}

func NewRunSoldier(keywords []string, command, description string, score int) *RunSoldier {
	return &RunSoldier{Soldier: *NewSoldier(keywords, command, description, score)}
}

func (s *RunSoldier) Match(keywords []string) []domain.Command {
	if !s.matches(keywords) {
		return nil
	}
	return []domain.Command{s}
}

func (s *RunSoldier) Order(ctx context.Context, keywords []string, sink domain.Sink) error {
	return yield(ctx, sink, s, s.matches(keywords))
}

func (s *RunSoldier) String() string {
	first, _, _ := strings.Cut(s.command, "\n")
	return "run: " + first
}

func (s *RunSoldier) CopyText() string { return "" }
func (s *RunSoldier) Execute() error   { return action.RunShell(s.command) }

// FileSoldier opens a file with the viewer registered for its type.
type FileSoldier struct {
	keywords    []string
	filename    string
	description string
	filetype    string
	dir         string
	score       int
	viewers     action.Viewers
}

// FileSpec describes a file soldier; a nil Score means DefaultScore.
type FileSpec struct {
	Keywords    []string
	Filename    string
	Description string
	Filetype    string
	Dir         string
	Score       *int
}

func NewFileSoldier(spec FileSpec, viewers action.Viewers) *FileSoldier {
	score := DefaultScore
	if spec.Score != nil {
		score = *spec.Score
	}
	return &FileSoldier{
		keywords:    append([]string(nil), spec.Keywords...),
		filename:    spec.Filename,
		description: spec.Description,
		filetype:    spec.Filetype,
		dir:         spec.Dir,
		score:       score,
		viewers:     viewers,
	}
}

func (f *FileSoldier) matches(keywords []string) bool {
	return matcher.Match(keywords, f.keywords, f.filename)
}

func (f *FileSoldier) Match(keywords []string) []domain.Command {
	if !f.matches(keywords) {
		return nil
	}
	return []domain.Command{f}
}

func (f *FileSoldier) Order(ctx context.Context, keywords []string, sink domain.Sink) error {
	return yield(ctx, sink, f, f.matches(keywords))
}

func (f *FileSoldier) viewer() string { return f.viewers.For(f.filetype) }

func (f *FileSoldier) Score() int       { return f.score }
func (f *FileSoldier) String() string   { return "edit " + f.filename }
func (f *FileSoldier) CopyText() string { return f.filename }
func (f *FileSoldier) Execute() error   { return action.OpenFile(f.viewer(), f.filename, f.dir) }

func (f *FileSoldier) Preview() domain.Preview {
	p := domain.Preview{}.
		Add("file", f.filename).
		Add("file type", f.filetype).
		Add("open with", f.viewer())
	if f.description != "" {
		p = p.Add("description", f.description)
	}
	if f.dir != "" {
		p = p.Add("dir", f.dir)
	}
	if len(f.keywords) > 0 {
		p = p.Add("keywords", strings.Join(f.keywords, " "))
	}
	return p
}

// DebugSoldier answers the single keyword "debug" and dumps runtime information.
type DebugSoldier struct {
	info map[string]any
}

func NewDebugSoldier(info map[string]any) *DebugSoldier {
	return &DebugSoldier{info: info}
}

func (d *DebugSoldier) matches(keywords []string) bool {
	return len(keywords) == 1 && keywords[0] == "debug"
}

func (d *DebugSoldier) Match(keywords []string) []domain.Command {
	if !d.matches(keywords) {
		return nil
	}
	return []domain.Command{d}
}

func (d *DebugSoldier) Order(ctx context.Context, keywords []string, sink domain.Sink) error {
	return yield(ctx, sink, d, d.matches(keywords))
}

func (d *DebugSoldier) Score() int       { return -1000 }
func (d *DebugSoldier) String() string   { return "Debug" }
func (d *DebugSoldier) CopyText() string { return "" }

func (d *DebugSoldier) Preview() domain.Preview {
	return domain.Preview{}.Add("print debug information", "")
}

func (d *DebugSoldier) Execute() error {
	out, err := yaml.Marshal(d.info)
	if err != nil {
		return fmt.Errorf("marshal debug info: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func yield(ctx context.Context, sink domain.Sink, cmd domain.Command, ok bool) error {
	if !ok {
		return nil
	}
	return sink.Put(ctx, cmd)
}
