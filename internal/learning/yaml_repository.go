package learning

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	cardsFileName      = "cards.yml"
	reviewLogsFileName = "review_logs.yml"
)

// YAMLRepository implements Repository on top of two YAML files in a
// directory. Every write rewrites the affected file through a temporary file
// and a rename so a crash never leaves a half-written file behind.
type YAMLRepository struct {
	directory string

	mu         sync.Mutex
	loaded     bool
	cards      []Card
	reviewLogs []ReviewLog
}

// NewYAMLRepository creates a repository rooted at directory. The files are
// read lazily on first access.
func NewYAMLRepository(directory string) *YAMLRepository {
	return &YAMLRepository{directory: directory}
}

func (r *YAMLRepository) FindByID(_ context.Context, id int64) (*Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.load(); err != nil {
		return nil, err
	}

	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %d", ErrCardNotFound, id)
	}
	card := r.cards[i]
	return &card, nil
}

func (r *YAMLRepository) FindAll(_ context.Context) ([]Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.load(); err != nil {
		return nil, err
	}

	cards := make([]Card, len(r.cards))
	copy(cards, r.cards)
	return cards, nil
}

func (r *YAMLRepository) FindDue(_ context.Context, now time.Time, limit int) ([]Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.load(); err != nil {
		return nil, err
	}

	var due []Card
	for _, card := range r.cards {
		if !card.DueAt.After(now) {
			due = append(due, card)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].ID < due[j].ID
		}
		return due[i].DueAt.Before(due[j].DueAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *YAMLRepository) Create(_ context.Context, card *Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.load(); err != nil {
		return err
	}

	var maxID int64
	for _, c := range r.cards {
		maxID = max(maxID, c.ID)
	}
	card.ID = maxID + 1

	cards := append(r.cards, *card)
	if err := writeYamlFile(r.path(cardsFileName), cards); err != nil {
		return err
	}
	r.cards = cards
	return nil
}

func (r *YAMLRepository) UpdateState(_ context.Context, card *Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.load(); err != nil {
		return err
	}

	cards, err := r.replaced(card)
	if err != nil {
		return err
	}
	if err := writeYamlFile(r.path(cardsFileName), cards); err != nil {
		return err
	}
	r.cards = cards
	return nil
}

// RecordReview appends the log before it rewrites the card, so a failure in
// between leaves a log that Replay can still account for.
func (r *YAMLRepository) RecordReview(_ context.Context, card *Card, log *ReviewLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.load(); err != nil {
		return err
	}

	cards, err := r.replaced(card)
	if err != nil {
		return err
	}

	log.CardID = card.ID
	log.ID = r.nextLogID()
	logs := append(r.reviewLogs, *log)
	if err := writeYamlFile(r.path(reviewLogsFileName), logs); err != nil {
		return err
	}
	r.reviewLogs = logs

	if err := writeYamlFile(r.path(cardsFileName), cards); err != nil {
		return err
	}
	r.cards = cards
	return nil
}

func (r *YAMLRepository) FindReviewLogs(_ context.Context, cardID int64) ([]ReviewLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.load(); err != nil {
		return nil, err
	}

	var logs []ReviewLog
	for _, l := range r.reviewLogs {
		if l.CardID == cardID {
			logs = append(logs, l)
		}
	}
	sortReviewLogs(logs)
	return logs, nil
}

func (r *YAMLRepository) FindAllReviewLogs(_ context.Context) ([]ReviewLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.load(); err != nil {
		return nil, err
	}

	logs := make([]ReviewLog, len(r.reviewLogs))
	copy(logs, r.reviewLogs)
	sortReviewLogs(logs)
	return logs, nil
}

func (r *YAMLRepository) BatchCreateReviewLogs(_ context.Context, logs []*ReviewLog) error {
	if len(logs) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.load(); err != nil {
		return err
	}

	all := append([]ReviewLog{}, r.reviewLogs...)
	nextID := r.nextLogID()
	for _, l := range logs {
		l.ID = nextID
		nextID++
		all = append(all, *l)
	}
	if err := writeYamlFile(r.path(reviewLogsFileName), all); err != nil {
		return err
	}
	r.reviewLogs = all
	return nil
}

func (r *YAMLRepository) load() error {
	if r.loaded {
		return nil
	}

	cards, err := readYamlFile[[]Card](r.path(cardsFileName))
	if err != nil {
		return err
	}
	logs, err := readYamlFile[[]ReviewLog](r.path(reviewLogsFileName))
	if err != nil {
		return err
	}
	r.cards = cards
	r.reviewLogs = logs
	r.loaded = true
	return nil
}

func (r *YAMLRepository) path(name string) string {
	return filepath.Join(r.directory, name)
}

func (r *YAMLRepository) indexOf(id int64) int {
	for i, c := range r.cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// replaced returns a copy of the cards with card swapped in.
func (r *YAMLRepository) replaced(card *Card) ([]Card, error) {
	i := r.indexOf(card.ID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %d", ErrCardNotFound, card.ID)
	}
	cards := make([]Card, len(r.cards))
	copy(cards, r.cards)
	cards[i] = *card
	return cards, nil
}

func (r *YAMLRepository) nextLogID() int64 {
	var maxID int64
	for _, l := range r.reviewLogs {
		maxID = max(maxID, l.ID)
	}
	return maxID + 1
}

func sortReviewLogs(logs []ReviewLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].ReviewedAt.Equal(logs[j].ReviewedAt) {
			return logs[i].ID < logs[j].ID
		}
		return logs[i].ReviewedAt.Before(logs[j].ReviewedAt)
	})
}

// readYamlFile decodes path into T. A missing or empty file yields the zero
// value.
func readYamlFile[T any](path string) (T, error) {
	var result T

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(&result); err != nil && !errors.Is(err, io.EOF) {
		return result, fmt.Errorf("yaml.NewDecoder(%s).Decode() > %w", path, err)
	}
	return result, nil
}

func writeYamlFile[T any](path string, data T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(path), err)
	}

	file, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp(%s) > %w", path, err)
	}
	tmpPath := file.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("yaml.NewEncoder(%s).Encode() > %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("encoder.Close() > %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("file.Close() > %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("os.Rename(%s) > %w", path, err)
	}
	return nil
}
