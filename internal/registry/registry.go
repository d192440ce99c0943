// Package registry turns configured commander nodes into a commander tree.
package registry

import (
	"errors"
	"fmt"
	"log"
	"os/exec"
	"time"

	"yc/internal/action"
	"yc/internal/commander"
	"yc/internal/config"
	"yc/internal/domain"
)

const (
	CalculatorScore = 100
	ExternalScore   = 30
)

var (
	// ErrUnknownType is returned for a node whose type is not recognised.
	ErrUnknownType = errors.New("unknown commander type")
	// ErrNotSync is returned when a group holds a node that can only stream.
	ErrNotSync = errors.New("commander cannot be used in a group")
)

// Options carries runtime values that do not live in the config file.
type Options struct {
	// DebugInfo is dumped by "debug" nodes.
	DebugInfo map[string]any
}

// Build assembles the root commander. Top-level nodes run concurrently unless
// the search mode is "sequential", in which case they run one after another.
func Build(cfg *config.AppConfig, opts Options) (domain.Commander, error) {
	b := builder{viewers: action.Viewers(cfg.FileViewer), opts: opts}

	var children []domain.Commander
	if cfg.Search.CalculatorEnabled() {
		if calc := calculator("", CalculatorScore); calc != nil {
			children = append(children, calc)
		}
	}
	for i, node := range cfg.Commanders {
		c, err := b.async(node, fmt.Sprintf("commanders[%d]", i))
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}

	switch cfg.Search.Mode {
	case "", "concurrent":
		return commander.NewConcurrent(children...).WithLimit(cfg.Search.MaxConcurrency), nil
	case "sequential":
		return commander.NewChain(children...), nil
	default:
		return nil, fmt.Errorf("search mode %q: want concurrent or sequential", cfg.Search.Mode)
	}
}

// FromTuple builds a soldier from the short (keywords, command, description)
// form used by plain command lists.
func FromTuple(keywords []string, command string, description ...string) *commander.Soldier {
	var desc string
	if len(description) > 0 {
		desc = description[0]
	}
	return commander.FromSpec(commander.SoldierSpec{Keywords: keywords, Command: command, Description: desc})
}

type builder struct {
	viewers action.Viewers
	opts    Options
}

func (b builder) async(node config.CommanderConfig, path string) (domain.Commander, error) {
	switch node.Type {
	case "calculator":
		if calc := calculator(node.Program, scoreOr(node.Score, CalculatorScore)); calc != nil {
			return calc, nil
		}
		return commander.NewChain(), nil
	case "external":
		ext, err := commander.NewExternal(commander.ExternalConfig{
			Command:    node.Command,
			Score:      scoreOr(node.Score, ExternalScore),
			Delay:      time.Duration(node.DelayMs) * time.Millisecond,
			Timeout:    time.Duration(node.TimeoutSecs) * time.Second,
			TitleField: node.TitleField,
			CopyField:  node.CopyField,
			OpenField:  node.OpenField,
			Opener:     node.Opener,
			Marker:     node.Marker,
			CacheSize:  node.CacheSize,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return ext, nil
	case "chain":
		chain := commander.NewChain()
		for i, child := range node.Children {
			c, err := b.async(child, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			chain.Recruit(c)
		}
		return chain, nil
	case "async":
		group := commander.NewConcurrent().WithLimit(node.Limit)
		for i, child := range node.Children {
			c, err := b.async(child, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			group.Recruit(c)
		}
		return group, nil
	}
	c, err := b.sync(node, path)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// syncCommander can both stream and answer synchronously, so it fits in a group.
type syncCommander interface {
	domain.Commander
	domain.SyncCommander
}

func (b builder) sync(node config.CommanderConfig, path string) (syncCommander, error) {
	switch node.Type {
	case "", "soldier":
		return commander.FromSpec(commander.SoldierSpec{
			Keywords:    node.Keywords,
			Command:     node.Command,
			Description: node.Description,
			Score:       node.Score,
		}), nil
	case "run":
		return commander.NewRunSoldier(node.Keywords, node.Command, node.Description, scoreOr(node.Score, commander.DefaultScore)), nil
	case "file":
		return commander.NewFileSoldier(commander.FileSpec{
			Keywords:    node.Keywords,
			Filename:    node.Filename,
			Description: node.Description,
			Filetype:    node.Filetype,
			Dir:         node.Dir,
			Score:       node.Score,
		}, b.viewers), nil
	case "debug":
		return commander.NewDebugSoldier(b.opts.DebugInfo), nil
	case "group":
		group := commander.NewSequence()
		for i, child := range node.Children {
			c, err := b.sync(child, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			group.Recruit(c)
		}
		return group, nil
	case "calculator", "external", "chain", "async":
		return nil, fmt.Errorf("%s: %w: %s", path, ErrNotSync, node.Type)
	}
	return nil, fmt.Errorf("%s: %w: %q", path, ErrUnknownType, node.Type)
}

// calculator returns nil, logging once, when program cannot be found, so a
// missing bc does not fail every formula-shaped query.
func calculator(program string, score int) *commander.Calculator {
	if program == "" {
		program = commander.DefaultCalculatorProgram
	}
	if _, err := exec.LookPath(program); err != nil {
		log.Printf("registry: calculator disabled: %v", err)
		return nil
	}
	return commander.NewCalculator(program, score)
}

func scoreOr(score *int, def int) int {
	if score != nil {
		return *score
	}
	return def
}
