package commander

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	jsoniter "github.com/json-iterator/go"

	"yc/internal/action"
	"yc/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// QueryPlaceholder is replaced by the joined keywords in an external command template.
const QueryPlaceholder = "{query}"

// ExternalConfig configures a commander backed by an external program that
// prints a JSON array of objects for a query.
type ExternalConfig struct {
	Command    string
	Score      int
	Delay      time.Duration
	Timeout    time.Duration
	TitleField string
	CopyField  string
	OpenField  string
	Opener     string
	Marker     string
	CacheSize  int
}

// External runs an external search program per query and turns each entry of
// its output into a command. Cancelling the search kills the program.
type External struct {
	cfg   ExternalConfig
	cache *lru.Cache[string, []map[string]string]
}

func NewExternal(cfg ExternalConfig) (*External, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New("external commander: missing command")
	}
	if cfg.TitleField == "" {
		cfg.TitleField = "title"
	}
	if cfg.CopyField == "" {
		cfg.CopyField = "url"
	}
	if cfg.OpenField == "" {
		cfg.OpenField = "url"
	}
	if cfg.Opener == "" {
		cfg.Opener = "xdg-open %s"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	e := &External{cfg: cfg}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, []map[string]string](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("external commander cache: %w", err)
		}
		e.cache = cache
	}
	return e, nil
}

func (e *External) Order(ctx context.Context, keywords []string, sink domain.Sink) error {
	query := strings.TrimSpace(strings.Join(keywords, " "))
	if query == "" {
		return nil
	}
	entries, ok := e.cached(query)
	if !ok {
		if e.cfg.Delay > 0 {
			timer := time.NewTimer(e.cfg.Delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
		var err error
		entries, err = e.fetch(ctx, query)
		if err != nil {
			return err
		}
		if e.cache != nil {
			e.cache.Add(query, entries)
		}
	}
	for i, entry := range entries {
		if err := sink.Put(ctx, e.newResult(entry, e.cfg.Score-i)); err != nil {
			return err
		}
	}
	return nil
}

func (e *External) cached(query string) ([]map[string]string, bool) {
	if e.cache == nil {
		return nil, false
	}
	return e.cache.Get(query)
}

func (e *External) fetch(ctx context.Context, query string) ([]map[string]string, error) {
	args, err := action.SplitTemplate(e.cfg.Command, QueryPlaceholder, query)
	if err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = 100 * time.Millisecond
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("run %s: %w (%s)", args[0], err, strings.TrimSpace(stderr.String()))
	}
	entries, err := ParseEntries(out)
	if err != nil {
		return nil, fmt.Errorf("decode output of %s: %w", args[0], err)
	}
	return entries, nil
}

// ParseEntries decodes a JSON array of objects, stringifying every value.
// Empty output means no entries.
func ParseEntries(data []byte) ([]map[string]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	entries := make([]map[string]string, 0, len(raw))
	for _, obj := range raw {
		entry := make(map[string]string, len(obj))
		for k, v := range obj {
			switch val := v.(type) {
			case string:
				entry[k] = val
			case nil:
				entry[k] = ""
			default:
				entry[k] = fmt.Sprint(val)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (e *External) newResult(entry map[string]string, score int) *ExternalResult {
	r := &ExternalResult{
		title:  entry[e.cfg.TitleField],
		copy:   entry[e.cfg.CopyField],
		target: entry[e.cfg.OpenField],
		opener: e.cfg.Opener,
		marker: e.cfg.Marker,
		score:  score,
	}
	keys := make([]string, 0, len(entry))
	for k := range entry {
		if k != e.cfg.TitleField {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.preview = r.preview.Add(k, entry[k])
	}
	return r
}

// ExternalResult is one entry reported by an external program.
type ExternalResult struct {
	title   string
	copy    string
	target  string
	opener  string
	marker  string
	score   int
	preview domain.Preview
}

func (r *ExternalResult) Score() int              { return r.score }
func (r *ExternalResult) String() string          { return r.title }
func (r *ExternalResult) Preview() domain.Preview { return r.preview }
func (r *ExternalResult) CopyText() string        { return r.copy }

func (r *ExternalResult) Marker() string {
	if r.marker == "" {
		return "G "
	}
	return r.marker
}

func (r *ExternalResult) Execute() error {
	if r.target == "" {
		return nil
	}
	return action.OpenFile(r.opener, r.target, "")
}
